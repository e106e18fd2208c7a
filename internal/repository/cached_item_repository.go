package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shareit-platform/service-booking/internal/domain/item"
)

const (
	itemCachePrefix     = "shareit:item:"
	defaultItemCacheTTL = 5 * time.Minute
)

// storeIfNewer writes ARGV[1] with a PX ttl of ARGV[3] unless the cached
// entry already holds version ARGV[2] or later.
var storeIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local ok, snap = pcall(cjson.decode, cur)
  if ok and type(snap) == 'table' and tonumber(snap.version) and tonumber(snap.version) >= tonumber(ARGV[2]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// itemSnapshot is the cached JSON form of an item.
type itemSnapshot struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	RequestID   uuid.UUID `json:"requestId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CachedItemRepository is a read-through Redis cache in front of another
// ItemRepository. Single-item reads are cached and writes refresh the entry.
// An entry is only ever replaced by a newer item version, so a slow reader
// cannot put back a snapshot that a writer has already superseded. Redis
// failures are logged and fall through to the backing store.
type CachedItemRepository struct {
	item.ItemRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedItemRepository wraps next with a Redis cache.
func NewCachedItemRepository(next item.ItemRepository, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedItemRepository {
	if ttl <= 0 {
		ttl = defaultItemCacheTTL
	}
	return &CachedItemRepository{ItemRepository: next, rdb: rdb, ttl: ttl, logger: logger}
}

// FindByID serves from Redis when possible.
func (r *CachedItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	key := itemCachePrefix + id.String()

	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var snap itemSnapshot
		if jsonErr := json.Unmarshal(raw, &snap); jsonErr == nil {
			return item.Reconstruct(snap.ID, snap.OwnerID, snap.RequestID, snap.Name, snap.Description, snap.Available,
				snap.Version, snap.CreatedAt, snap.UpdatedAt), nil
		}
		r.logger.Warn("discarding corrupt item cache entry", zap.String("item_id", id.String()))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("item cache read failed", zap.String("item_id", id.String()), zap.Error(err))
	}

	it, err := r.ItemRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, it)
	return it, nil
}

// Save writes through and primes the cache.
func (r *CachedItemRepository) Save(ctx context.Context, it *item.Item) error {
	if err := r.ItemRepository.Save(ctx, it); err != nil {
		return err
	}
	r.store(ctx, it)
	return nil
}

// Update writes through and caches the new version. A failed update, or a
// failed cache write, evicts the entry instead.
func (r *CachedItemRepository) Update(ctx context.Context, it *item.Item) error {
	if err := r.ItemRepository.Update(ctx, it); err != nil {
		r.evict(ctx, it.ID())
		return err
	}
	if !r.store(ctx, it) {
		r.evict(ctx, it.ID())
	}
	return nil
}

// Ping checks the Redis connection.
func (r *CachedItemRepository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *CachedItemRepository) store(ctx context.Context, it *item.Item) bool {
	payload, err := json.Marshal(itemSnapshot{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		RequestID:   it.RequestID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		Version:     it.Version(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	})
	if err != nil {
		return false
	}
	key := itemCachePrefix + it.ID().String()
	if err := storeIfNewer.Run(ctx, r.rdb, []string{key}, payload, it.Version(), r.ttl.Milliseconds()).Err(); err != nil {
		r.logger.Warn("item cache write failed", zap.String("item_id", it.ID().String()), zap.Error(err))
		return false
	}
	return true
}

func (r *CachedItemRepository) evict(ctx context.Context, id uuid.UUID) {
	if err := r.rdb.Del(ctx, itemCachePrefix+id.String()).Err(); err != nil {
		r.logger.Warn("item cache evict failed", zap.String("item_id", id.String()), zap.Error(err))
	}
}

var _ item.ItemRepository = (*CachedItemRepository)(nil)
