// Package handler はcompanyフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"company_backend/internal/feature/company/domain/entity"
	"company_backend/internal/feature/company/transport/http/dto"
	"company_backend/internal/feature/company/usecase"
	"company_backend/internal/platform/http/middleware"
)

// CompanyUsecase は企業レコード操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CompanyUsecase interface {
	Create(ctx context.Context, in usecase.CompanyFields) (*entity.Company, error)
	Get(ctx context.Context, id string) (*entity.Company, error)
	List(ctx context.Context, filter usecase.ListFilter) ([]entity.Company, error)
	Replace(ctx context.Context, id string, in usecase.CompanyFields) (*entity.Company, error)
	Patch(ctx context.Context, id string, in usecase.CompanyFields) (*entity.Company, error)
	Delete(ctx context.Context, id string) error
}

// CompanyHandler は /companies/ リソースのHTTPリクエストを処理します。
type CompanyHandler struct {
	uc CompanyUsecase
}

// NewCompanyHandler は指定されたusecaseでCompanyHandlerの新しいインスタンスを生成します。
func NewCompanyHandler(uc CompanyUsecase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// List は企業の一覧を返します。
//
// GET /companies/?search=acme
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.uc.List(c.Request.Context(), usecase.ListFilter{Search: c.Query("search")})
	if err != nil {
		h.writeError(c, "list companies", err)
		return
	}

	out := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		out = append(out, dto.NewCompanyResponse(&companies[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Create は企業を新規登録し、201 と登録内容を返します。
//
// POST /companies/
func (h *CompanyHandler) Create(c *gin.Context) {
	var req dto.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, "create company", err)
		return
	}

	company, err := h.uc.Create(c.Request.Context(), req.ToFields())
	if err != nil {
		h.writeError(c, "create company", err)
		return
	}
	slog.Info("company created", "id", company.ID, "request_id", middleware.RequestIDFrom(c), "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewCompanyResponse(company))
}

// Get は指定IDの企業を返します。
//
// GET /companies/:id/
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.uc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get company", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCompanyResponse(company))
}

// Update は企業を全体更新します。省略された任意フィールドは未設定に戻ります。
//
// PUT /companies/:id/
func (h *CompanyHandler) Update(c *gin.Context) {
	h.update(c, "replace company", h.uc.Replace)
}

// Patch は企業を部分更新します。リクエストに含まれるフィールドのみ変更します。
//
// PATCH /companies/:id/
func (h *CompanyHandler) Patch(c *gin.Context) {
	h.update(c, "patch company", h.uc.Patch)
}

type updateFunc func(ctx context.Context, id string, in usecase.CompanyFields) (*entity.Company, error)

func (h *CompanyHandler) update(c *gin.Context, op string, fn updateFunc) {
	var req dto.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, op, err)
		return
	}

	company, err := fn(c.Request.Context(), c.Param("id"), req.ToFields())
	if err != nil {
		h.writeError(c, op, err)
		return
	}
	slog.Info("company updated", "id", company.ID, "op", op, "request_id", middleware.RequestIDFrom(c), "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewCompanyResponse(company))
}

// Delete は企業を削除し、204 を返します。
//
// DELETE /companies/:id/
func (h *CompanyHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.uc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "delete company", err)
		return
	}
	slog.Info("company deleted", "id", id, "request_id", middleware.RequestIDFrom(c), "remote_addr", c.ClientIP())
	c.Status(http.StatusNoContent)
}

// writeError はusecaseのエラーをHTTPステータスに変換して返します。
// 想定外のエラーの詳細はログにのみ出力し、クライアントには公開しません。
func (h *CompanyHandler) writeError(c *gin.Context, op string, err error) {
	var (
		ve *usecase.ValidationError
		ce *usecase.ConflictError
	)
	attrs := []any{"op", op, "error", err, "request_id", middleware.RequestIDFrom(c), "remote_addr", c.ClientIP()}

	switch {
	case errors.As(err, &ve):
		slog.Warn("company validation failed", attrs...)
		c.JSON(http.StatusBadRequest, dto.FieldErrorsResponse{Errors: ve.Fields})
	case errors.As(err, &ce):
		slog.Warn("company conflict", attrs...)
		c.JSON(http.StatusBadRequest, dto.FieldErrorsResponse{Errors: ce.Fields})
	case errors.Is(err, usecase.ErrCompanyNotFound):
		slog.Warn("company not found", attrs...)
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: usecase.ErrCompanyNotFound.Error()})
	default:
		slog.Error("company request failed", attrs...)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

// writeBindError はリクエストボディのデコード失敗を400で返します。
// 型の合わないフィールドが特定できる場合はそのフィールドのエラーとして返します。
func (h *CompanyHandler) writeBindError(c *gin.Context, op string, err error) {
	slog.Warn("company request body rejected", "op", op, "error", err, "request_id", middleware.RequestIDFrom(c), "remote_addr", c.ClientIP())

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		c.JSON(http.StatusBadRequest, dto.FieldErrorsResponse{Errors: map[string][]string{
			typeErr.Field: {"Incorrect type. Expected " + typeErr.Type.String() + "."},
		}})
		return
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed JSON body"})
}
