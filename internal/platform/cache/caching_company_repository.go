// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"company_backend/internal/feature/company/domain/entity"
	"company_backend/internal/feature/company/usecase"
	platformdb "company_backend/internal/platform/db"
)

// fillScript writes KEYS[2] only while the version counter KEYS[1] still equals ARGV[1].
// Every invalidation bumps the counter, so a read that raced with a write never puts the
// pre-write row back into the cache.
var fillScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
	current = '0'
end
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// versionRetention は書き込みと競合した読み取りを検出できる期間です。
const versionRetention = time.Hour

// CachingCompanyRepository decorates a CompanyRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository.
//
// Reads inside a read-write transaction always go to the database so that a
// write never builds on a cached snapshot. Invalidation runs after commit.
type CachingCompanyRepository struct {
	inner          usecase.CompanyRepository
	rdb            *redis.Client
	ttl            time.Duration
	namespace      string
	skipUserLinked bool
}

var _ usecase.CompanyRepository = (*CachingCompanyRepository)(nil)

// Option configures a CachingCompanyRepository.
type Option func(*CachingCompanyRepository)

// WithoutUserLinkedRecords keeps every record that references a user out of the cache.
// Use it when the users table shares the database: ON DELETE SET NULL then rewrites
// companies without passing through this repository.
func WithoutUserLinkedRecords() Option {
	return func(c *CachingCompanyRepository) {
		c.skipUserLinked = true
	}
}

// NewCachingCompanyRepository decorates a CompanyRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "companies".
func NewCachingCompanyRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CompanyRepository, namespace string, opts ...Option) *CachingCompanyRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "companies"
	}
	c := &CachingCompanyRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create stores the company and drops the cached list.
func (c *CachingCompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	if err := c.inner.Create(ctx, company); err != nil {
		return err
	}
	c.invalidate(ctx, company.ID)
	return nil
}

// FindByID retrieves a company, checking cache first then falling back to the database.
// Not-found results are not cached.
func (c *CachingCompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	if !c.cacheable(ctx) {
		return c.inner.FindByID(ctx, id)
	}

	key, versionKey := c.idKey(id), c.idVersionKey(id)

	// 1) Check cache
	var cached entity.Company
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	// 2) Fallback to database; the version is read first so a concurrent write is detected
	version, versionOK := c.version(ctx, versionKey)
	out, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if versionOK && c.storable(*out) {
		c.fill(ctx, versionKey, key, version, out)
	}
	return out, nil
}

// List caches the unfiltered collection only; searches always hit the database.
func (c *CachingCompanyRepository) List(ctx context.Context, filter usecase.ListFilter) ([]entity.Company, error) {
	if !c.cacheable(ctx) || filter.Search != "" {
		return c.inner.List(ctx, filter)
	}

	key, versionKey := c.listKey(), c.listVersionKey()

	var cached []entity.Company
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	version, versionOK := c.version(ctx, versionKey)
	out, err := c.inner.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if versionOK && c.storable(out...) {
		c.fill(ctx, versionKey, key, version, out)
	}
	return out, nil
}

// Update writes through and invalidates the record and the list.
func (c *CachingCompanyRepository) Update(ctx context.Context, company *entity.Company) error {
	if err := c.inner.Update(ctx, company); err != nil {
		return err
	}
	c.invalidate(ctx, company.ID)
	return nil
}

// Delete removes the company and invalidates the record and the list.
func (c *CachingCompanyRepository) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// ExistsByID is never cached; uniqueness probes must see the database.
func (c *CachingCompanyRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	return c.inner.ExistsByID(ctx, id)
}

// ExistsByEmail is never cached; uniqueness probes must see the database.
func (c *CachingCompanyRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return c.inner.ExistsByEmail(ctx, email, excludeID)
}

// ClearUserReferences clears the references and invalidates every changed record.
func (c *CachingCompanyRepository) ClearUserReferences(ctx context.Context, userID uint) ([]string, error) {
	ids, err := c.inner.ClearUserReferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		c.invalidate(ctx, ids...)
	}
	return ids, nil
}

func (c *CachingCompanyRepository) cacheable(ctx context.Context) bool {
	return c.rdb != nil && !platformdb.InReadWriteTx(ctx)
}

// storable reports whether companies may be cached under the configured options.
func (c *CachingCompanyRepository) storable(companies ...entity.Company) bool {
	if !c.skipUserLinked {
		return true
	}
	for _, company := range companies {
		for _, id := range company.UserIDs() {
			if id != nil {
				return false
			}
		}
	}
	return true
}

// get decodes the cached value of key into dst. A corrupted entry is deleted.
func (c *CachingCompanyRepository) get(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// version returns the current invalidation counter of versionKey ("0" when unset).
// ok is false when Redis could not answer; the caller then skips the fill.
func (c *CachingCompanyRepository) version(ctx context.Context, versionKey string) (string, bool) {
	v, err := c.rdb.Get(ctx, versionKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "0", true
	case err != nil:
		return "", false
	default:
		return v, true
	}
}

// fill stores value under key unless versionKey moved past version. Failures are ignored.
func (c *CachingCompanyRepository) fill(ctx context.Context, versionKey, key, version string, value any) {
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := fillScript.Run(ctx, c.rdb, []string{versionKey, key}, version, b, c.ttl.Milliseconds()).Err(); err != nil {
		slog.Debug("cache fill skipped", "key", key, "error", err)
	}
}

// invalidate bumps the version counters and deletes the list key and the keys of ids
// once the surrounding transaction commits. Failures are logged and otherwise ignored.
func (c *CachingCompanyRepository) invalidate(ctx context.Context, ids ...string) {
	if c.rdb == nil {
		return
	}
	keys := make([]string, 0, len(ids)+1)
	versionKeys := make([]string, 0, len(ids)+1)
	keys = append(keys, c.listKey())
	versionKeys = append(versionKeys, c.listVersionKey())
	for _, id := range ids {
		keys = append(keys, c.idKey(id))
		versionKeys = append(versionKeys, c.idVersionKey(id))
	}

	platformdb.AfterCommit(ctx, func(ctx context.Context) {
		// リクエストがキャンセルされても無効化は完了させる
		ctx = context.WithoutCancel(ctx)
		_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, vk := range versionKeys {
				pipe.Incr(ctx, vk)
				pipe.PExpire(ctx, vk, c.ttl+versionRetention)
			}
			pipe.Del(ctx, keys...)
			return nil
		})
		if err != nil {
			slog.Warn("cache invalidation failed", "keys", keys, "error", err)
		}
	})
}

// idKey uses the id verbatim: Redis keys are binary safe and distinct ids must
// never share a key.
func (c *CachingCompanyRepository) idKey(id string) string {
	return c.namespace + ":id:" + id
}

func (c *CachingCompanyRepository) idVersionKey(id string) string {
	return c.namespace + ":ver:id:" + id
}

func (c *CachingCompanyRepository) listKey() string {
	return c.namespace + ":list"
}

func (c *CachingCompanyRepository) listVersionKey() string {
	return c.namespace + ":ver:list"
}
