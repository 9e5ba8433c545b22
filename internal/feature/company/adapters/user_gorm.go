package adapters

import (
	"context"
	"slices"

	"gorm.io/gorm"

	"company_backend/internal/feature/company/usecase"
	platformdb "company_backend/internal/platform/db"
)

// userDirectory resolves user references against the users table in the same database.
type userDirectory struct {
	db *gorm.DB
}

var _ usecase.UserDirectory = (*userDirectory)(nil)

// NewUserDirectory creates a UserDirectory backed by the users table.
func NewUserDirectory(db *gorm.DB) *userDirectory {
	return &userDirectory{db: db}
}

// Missing returns the subset of ids with no row in users, in input order.
func (d *userDirectory) Missing(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []uint
	if err := platformdb.Conn(ctx, d.db).
		Model(&UserModel{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	var missing []uint
	for _, id := range ids {
		if !slices.Contains(found, id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
