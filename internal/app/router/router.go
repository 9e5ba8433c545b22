// Package router はアプリケーションのHTTPルーティングを定義します。
package router

import (
	"github.com/gin-gonic/gin"

	companyhandler "company_backend/internal/feature/company/transport/handler"
	"company_backend/internal/platform/http/handler"
	"company_backend/internal/platform/http/middleware"
)

// NewRouter はミドルウェアとすべてのルートを登録したginエンジンを返します。
// /companies/ 配下は末尾スラッシュ付きが正規のパスで、スラッシュなしはリダイレクトされます。
func NewRouter(company *companyhandler.CompanyHandler, readiness gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(), gin.Recovery())

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/readyz", readiness)

	companies := r.Group("/companies")
	{
		companies.GET("/", company.List)
		companies.POST("/", company.Create)
		companies.GET("/:id/", company.Get)
		companies.PUT("/:id/", company.Update)
		companies.PATCH("/:id/", company.Patch)
		companies.DELETE("/:id/", company.Delete)
	}

	return r
}
