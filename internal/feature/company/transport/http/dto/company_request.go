// Package dto defines data transfer objects for the company HTTP API.
package dto

import (
	"company_backend/internal/feature/company/usecase"
	"company_backend/internal/shared/optional"
)

// CompanyRequest は作成・更新リクエストのボディです。
// 各フィールドは「未指定」と「null」を区別します（PATCH で未指定のフィールドは変更しない）。
type CompanyRequest struct {
	ID      optional.Value[string] `json:"id"`
	Name    optional.Value[string] `json:"name"`
	Address optional.Value[string] `json:"address"`
	Email   optional.Value[string] `json:"email"`
	Phone   optional.Value[string] `json:"phone"`
	User1   optional.Value[uint]   `json:"user1"`
	User2   optional.Value[uint]   `json:"user2"`
	User3   optional.Value[uint]   `json:"user3"`
}

// ToFields converts the request into usecase input.
func (r CompanyRequest) ToFields() usecase.CompanyFields {
	return usecase.CompanyFields{
		ID:      r.ID,
		Name:    r.Name,
		Address: r.Address,
		Email:   r.Email,
		Phone:   r.Phone,
		User1:   r.User1,
		User2:   r.User2,
		User3:   r.User3,
	}
}
