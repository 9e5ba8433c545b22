package adapters

import (
	"company_backend/internal/feature/company/domain/entity"
)

// UserModel is the GORM model for the users table owned by the user directory.
// Only the primary key is read by this service.
type UserModel struct {
	ID       uint   `gorm:"primaryKey"`
	Username string `gorm:"size:150;uniqueIndex"`
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// CompanyModel is the GORM model for the companies table.
type CompanyModel struct {
	ID      string  `gorm:"primaryKey;size:50"`
	Name    string  `gorm:"size:255;not null"`
	Address *string `gorm:"type:text"`
	Email   string  `gorm:"size:254;not null;uniqueIndex"`
	Phone   string  `gorm:"size:15;not null"`

	// ユーザー削除時は参照をNULLにする（カスケード削除はしない）
	User1ID *uint      `gorm:"column:user1_id;index"`
	User1   *UserModel `gorm:"foreignKey:User1ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	User2ID *uint      `gorm:"column:user2_id;index"`
	User2   *UserModel `gorm:"foreignKey:User2ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	User3ID *uint      `gorm:"column:user3_id;index"`
	User3   *UserModel `gorm:"foreignKey:User3ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the table name for GORM.
func (CompanyModel) TableName() string {
	return "companies"
}

// ToEntity converts the GORM model to a domain entity.
func (m *CompanyModel) ToEntity() *entity.Company {
	return &entity.Company{
		ID:      m.ID,
		Name:    m.Name,
		Address: m.Address,
		Email:   m.Email,
		Phone:   m.Phone,
		User1ID: m.User1ID,
		User2ID: m.User2ID,
		User3ID: m.User3ID,
	}
}

// CompanyModelFromEntity converts a domain entity to a GORM model.
func CompanyModelFromEntity(c *entity.Company) *CompanyModel {
	return &CompanyModel{
		ID:      c.ID,
		Name:    c.Name,
		Address: c.Address,
		Email:   c.Email,
		Phone:   c.Phone,
		User1ID: c.User1ID,
		User2ID: c.User2ID,
		User3ID: c.User3ID,
	}
}

// updateColumns returns every mutable column of m keyed by column name.
// A map is used so that nil pointers are written as NULL.
func (m *CompanyModel) updateColumns() map[string]any {
	return map[string]any{
		"name":     m.Name,
		"address":  m.Address,
		"email":    m.Email,
		"phone":    m.Phone,
		"user1_id": m.User1ID,
		"user2_id": m.User2ID,
		"user3_id": m.User3ID,
	}
}
