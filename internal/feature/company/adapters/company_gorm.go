// Package adapters provides repository implementations for the company feature.
package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"company_backend/internal/feature/company/domain/entity"
	"company_backend/internal/feature/company/usecase"
	platformdb "company_backend/internal/platform/db"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

var userColumns = [entity.MaxUserLinks]string{"user1_id", "user2_id", "user3_id"}

// companyRepository is a GORM implementation of the CompanyRepository interface.
// Every query runs on the transaction carried by ctx when there is one.
type companyRepository struct {
	db *gorm.DB
}

// Compile-time check to ensure companyRepository implements CompanyRepository.
var _ usecase.CompanyRepository = (*companyRepository)(nil)

// NewCompanyRepository creates a new instance of companyRepository.
func NewCompanyRepository(db *gorm.DB) *companyRepository {
	return &companyRepository{db: db}
}

// Create persists a new company.
func (r *companyRepository) Create(ctx context.Context, company *entity.Company) error {
	model := CompanyModelFromEntity(company)
	if err := platformdb.Conn(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

// FindByID retrieves a company by its ID.
func (r *companyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	var model CompanyModel
	if err := platformdb.Conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCompanyNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// List retrieves every company ordered by ID.
func (r *companyRepository) List(ctx context.Context, filter usecase.ListFilter) ([]entity.Company, error) {
	q := platformdb.Conn(ctx, r.db).Order("id ASC")
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var models []CompanyModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	companies := make([]entity.Company, len(models))
	for i := range models {
		companies[i] = *models[i].ToEntity()
	}
	return companies, nil
}

// Update overwrites every mutable column of the stored row.
func (r *companyRepository) Update(ctx context.Context, company *entity.Company) error {
	model := CompanyModelFromEntity(company)
	result := platformdb.Conn(ctx, r.db).
		Model(&CompanyModel{}).
		Where("id = ?", model.ID).
		Updates(model.updateColumns())

	if result.Error != nil {
		return translateUniqueViolation(result.Error)
	}
	if result.RowsAffected == 0 {
		return usecase.ErrCompanyNotFound
	}
	return nil
}

// Delete removes a company by its ID.
func (r *companyRepository) Delete(ctx context.Context, id string) error {
	result := platformdb.Conn(ctx, r.db).Where("id = ?", id).Delete(&CompanyModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrCompanyNotFound
	}
	return nil
}

// ExistsByID reports whether a company with id exists.
func (r *companyRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := platformdb.Conn(ctx, r.db).
		Model(&CompanyModel{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// ExistsByEmail reports whether a company other than excludeID uses email.
func (r *companyRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	q := platformdb.Conn(ctx, r.db).Model(&CompanyModel{}).Where("email = ?", email)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// ClearUserReferences sets every user slot that points at userID to NULL.
func (r *companyRepository) ClearUserReferences(ctx context.Context, userID uint) ([]string, error) {
	conn := platformdb.Conn(ctx, r.db)

	var ids []string
	if err := conn.
		Model(&CompanyModel{}).
		Where("user1_id = ? OR user2_id = ? OR user3_id = ?", userID, userID, userID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	for _, col := range userColumns {
		if err := conn.
			Model(&CompanyModel{}).
			Where(col+" = ?", userID).
			Update(col, nil).Error; err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// translateUniqueViolation maps driver-level unique constraint errors to usecase sentinels.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return usecase.ErrCompanyEmailExists
		}
		return usecase.ErrCompanyIDExists
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) &&
		(liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		if strings.Contains(liteErr.Error(), "companies.email") {
			return usecase.ErrCompanyEmailExists
		}
		return usecase.ErrCompanyIDExists
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return usecase.ErrCompanyIDExists
	}
	return err
}
