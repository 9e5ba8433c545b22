package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"company_backend/internal/feature/company/domain/entity"
	"company_backend/internal/shared/optional"
)

// CompanyRepository abstracts the persistence layer for company records.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CompanyRepository interface {
	// Create persists a new company. It returns ErrCompanyIDExists or ErrCompanyEmailExists
	// when a unique constraint rejects the row.
	Create(ctx context.Context, company *entity.Company) error

	// FindByID returns ErrCompanyNotFound when no row matches.
	FindByID(ctx context.Context, id string) (*entity.Company, error)

	// List returns every company matching filter.
	List(ctx context.Context, filter ListFilter) ([]entity.Company, error)

	// Update replaces every mutable column of the row identified by company.ID.
	Update(ctx context.Context, company *entity.Company) error

	// Delete returns ErrCompanyNotFound when no row matches.
	Delete(ctx context.Context, id string) error

	ExistsByID(ctx context.Context, id string) (bool, error)

	// ExistsByEmail reports whether a company other than excludeID uses email.
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)

	// ClearUserReferences sets every user slot equal to userID to NULL and returns the IDs
	// of the companies that changed.
	ClearUserReferences(ctx context.Context, userID uint) ([]string, error)
}

// UserDirectory answers whether user identifiers exist in the external user directory.
type UserDirectory interface {
	// Missing returns the subset of ids that do not exist.
	Missing(ctx context.Context, ids []uint) ([]uint, error)
}

// TransactionManager runs fn inside a single database transaction.
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// ListFilter narrows List results.
type ListFilter struct {
	// Search matches a case-insensitive substring of name or email. Empty means no filter.
	Search string
}

// CompanyFields carries the fields of a create or update request.
// An unset field was omitted by the caller; a null field was explicitly cleared.
type CompanyFields struct {
	ID      optional.Value[string]
	Name    optional.Value[string]
	Address optional.Value[string]
	Email   optional.Value[string]
	Phone   optional.Value[string]
	User1   optional.Value[uint]
	User2   optional.Value[uint]
	User3   optional.Value[uint]
}

func (f CompanyFields) users() [entity.MaxUserLinks]optional.Value[uint] {
	return [entity.MaxUserLinks]optional.Value[uint]{f.User1, f.User2, f.User3}
}

// CompanyUsecase provides business logic for company records.
type CompanyUsecase struct {
	repo  CompanyRepository
	users UserDirectory
	tx    TransactionManager
}

// NewCompanyUsecase creates a new CompanyUsecase. A nil TransactionManager runs every
// operation without a surrounding transaction.
func NewCompanyUsecase(repo CompanyRepository, users UserDirectory, tx TransactionManager) *CompanyUsecase {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &CompanyUsecase{repo: repo, users: users, tx: tx}
}

// Create validates fields and stores a new company.
func (u *CompanyUsecase) Create(ctx context.Context, in CompanyFields) (*entity.Company, error) {
	company := &entity.Company{
		ID:      in.ID.Or(""),
		Name:    in.Name.Or(""),
		Address: in.Address.Ptr(),
		Email:   in.Email.Or(""),
		Phone:   in.Phone.Or(""),
	}
	for i, v := range in.users() {
		company.SetUserID(i, v.Ptr())
	}
	normalize(company)

	if problems := validateFields(company); len(problems) > 0 {
		return nil, &ValidationError{Fields: problems}
	}
	missing, err := u.missingUsers(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := referenceProblems(company, missing); err != nil {
		return nil, err
	}

	err = u.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := u.ensureUnique(txCtx, company, true); err != nil {
			return err
		}
		return asConflict(u.repo.Create(txCtx, company))
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// Get returns the company identified by id.
func (u *CompanyUsecase) Get(ctx context.Context, id string) (*entity.Company, error) {
	var company *entity.Company
	err := u.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		c, err := u.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		company = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// List returns every company matching filter.
func (u *CompanyUsecase) List(ctx context.Context, filter ListFilter) ([]entity.Company, error) {
	var companies []entity.Company
	err := u.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		cs, err := u.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		companies = cs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return companies, nil
}

// Replace performs a full update: every omitted optional field is reset to absent.
// The body must carry the id, and it must equal the path id; the primary key is immutable.
func (u *CompanyUsecase) Replace(ctx context.Context, id string, in CompanyFields) (*entity.Company, error) {
	return u.update(ctx, id, in, true, func(existing *entity.Company) *entity.Company {
		next := &entity.Company{
			ID:      existing.ID,
			Name:    in.Name.Or(""),
			Address: in.Address.Ptr(),
			Email:   in.Email.Or(""),
			Phone:   in.Phone.Or(""),
		}
		for i, v := range in.users() {
			next.SetUserID(i, v.Ptr())
		}
		return next
	})
}

// Patch performs a partial update: only fields present in the request change.
func (u *CompanyUsecase) Patch(ctx context.Context, id string, in CompanyFields) (*entity.Company, error) {
	return u.update(ctx, id, in, false, func(existing *entity.Company) *entity.Company {
		next := *existing
		if in.Name.IsSet() {
			next.Name = in.Name.Or("")
		}
		if in.Address.IsSet() {
			next.Address = in.Address.Ptr()
		}
		if in.Email.IsSet() {
			next.Email = in.Email.Or("")
		}
		if in.Phone.IsSet() {
			next.Phone = in.Phone.Or("")
		}
		for i, v := range in.users() {
			if v.IsSet() {
				next.SetUserID(i, v.Ptr())
			}
		}
		return &next
	})
}

// update loads the stored row, applies the request and writes it back in one transaction.
// User references named by the request are resolved before the transaction starts so a
// slow user directory never holds a database connection.
func (u *CompanyUsecase) update(ctx context.Context, id string, in CompanyFields, requireID bool, apply func(*entity.Company) *entity.Company) (*entity.Company, error) {
	missing, err := u.missingUsers(ctx, in)
	if err != nil {
		return nil, err
	}

	var updated *entity.Company
	err = u.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := u.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		next := apply(existing)
		normalize(next)

		problems := validateFields(next)
		switch {
		case in.ID.IsSet() && strings.TrimSpace(in.ID.Or("")) != existing.ID:
			problems.Add("id", "This field cannot be changed.")
		case requireID && !in.ID.IsSet():
			problems.Add("id", "This field is required.")
		}
		if len(problems) > 0 {
			return &ValidationError{Fields: problems}
		}
		if err := referenceProblems(next, missing); err != nil {
			return err
		}

		if err := u.ensureUnique(txCtx, next, false); err != nil {
			return err
		}
		if err := u.repo.Update(txCtx, next); err != nil {
			return asConflict(err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the company identified by id.
func (u *CompanyUsecase) Delete(ctx context.Context, id string) error {
	return u.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return u.repo.Delete(txCtx, id)
	})
}

// DetachUser clears every reference to userID after the user has been removed from
// the user directory. It returns the IDs of the companies that changed.
func (u *CompanyUsecase) DetachUser(ctx context.Context, userID uint) ([]string, error) {
	var changed []string
	err := u.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		ids, err := u.repo.ClearUserReferences(txCtx, userID)
		if err != nil {
			return err
		}
		changed = ids
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

// missingUsers asks the user directory about every user id the request sets and returns
// the ones that do not exist. Each id is looked up once.
func (u *CompanyUsecase) missingUsers(ctx context.Context, in CompanyFields) ([]uint, error) {
	var ids []uint
	for _, v := range in.users() {
		if id := v.Ptr(); id != nil && !slices.Contains(ids, *id) {
			ids = append(ids, *id)
		}
	}
	if len(ids) == 0 || u.users == nil {
		return nil, nil
	}

	missing, err := u.users.Missing(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check user references: %w", err)
	}
	return missing, nil
}

// referenceProblems reports every user slot of c that points at a missing user.
func referenceProblems(c *entity.Company, missing []uint) error {
	problems := FieldErrors{}
	for i, id := range c.UserIDs() {
		if id != nil && slices.Contains(missing, *id) {
			problems.Add(userSlotName(i), fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *id))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Fields: problems}
	}
	return nil
}

// ensureUnique probes id (on create) and email uniqueness so both conflicts are reported
// together before the write.
func (u *CompanyUsecase) ensureUnique(ctx context.Context, c *entity.Company, checkID bool) error {
	var causes []error
	if checkID {
		exists, err := u.repo.ExistsByID(ctx, c.ID)
		if err != nil {
			return err
		}
		if exists {
			causes = append(causes, ErrCompanyIDExists)
		}
	}

	excludeID := ""
	if !checkID {
		excludeID = c.ID
	}
	exists, err := u.repo.ExistsByEmail(ctx, c.Email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		causes = append(causes, ErrCompanyEmailExists)
	}

	if len(causes) > 0 {
		return newConflict(causes...)
	}
	return nil
}
