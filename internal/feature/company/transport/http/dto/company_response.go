package dto

import "company_backend/internal/feature/company/domain/entity"

// CompanyResponse is the JSON representation of a company.
// address and user1..user3 are null when absent; phone is "" when absent.
type CompanyResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	User1   *uint   `json:"user1"`
	User2   *uint   `json:"user2"`
	User3   *uint   `json:"user3"`
}

// NewCompanyResponse builds the response for c.
func NewCompanyResponse(c *entity.Company) CompanyResponse {
	return CompanyResponse{
		ID:      c.ID,
		Name:    c.Name,
		Address: c.Address,
		Email:   c.Email,
		Phone:   c.Phone,
		User1:   c.User1ID,
		User2:   c.User2ID,
		User3:   c.User3ID,
	}
}

// ErrorResponse はフィールドに紐づかないエラーのレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// FieldErrorsResponse はフィールドごとの検証エラーのレスポンスです。
type FieldErrorsResponse struct {
	Errors map[string][]string `json:"errors"`
}
