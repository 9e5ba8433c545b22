// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"company_backend/internal/feature/company/adapters"
	"company_backend/internal/feature/company/usecase"
	"company_backend/internal/platform/cache"
	"company_backend/internal/platform/externalapi/userdirectory"
	infrahttp "company_backend/internal/platform/http"
)

// NewCompanyRepository creates a CompanyRepository implementation.
// If Redis is available, the GORM repository is wrapped with a read-through cache.
// Unless users come from the external directory, whose deletions arrive as events and
// invalidate through DetachUser, records that reference a user are not cached: the
// database clears those references on its own.
func NewCompanyRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration, users usecase.UserDirectory) usecase.CompanyRepository {
	repo := adapters.NewCompanyRepository(db)
	if rdb == nil {
		return repo
	}
	var opts []cache.Option
	if _, external := users.(*userdirectory.Client); !external {
		opts = append(opts, cache.WithoutUserLinkedRecords())
	}
	return cache.NewCachingCompanyRepository(rdb, ttl, repo, "companies", opts...)
}

// NewUserDirectory creates a UserDirectory implementation.
// If USER_DIRECTORY_URL is set, it returns the HTTP client for the external directory.
// Otherwise, it falls back to the users table in the same database.
func NewUserDirectory(db *gorm.DB) usecase.UserDirectory {
	cfg := userdirectory.LoadConfig()
	if cfg.BaseURL != "" {
		slog.Info("using external user directory", "url", cfg.BaseURL)
		return userdirectory.NewClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
	}
	return adapters.NewUserDirectory(db)
}
