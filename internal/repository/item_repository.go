package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// ItemModel is the GORM model for the items table.
type ItemModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_items_owner_id,priority:1"`
	RequestID   *uuid.UUID `gorm:"type:uuid;index:idx_items_request_id"`
	Name        string     `gorm:"not null;size:255"`
	Description string     `gorm:"not null;size:1000"`
	Available   bool       `gorm:"not null"`
	Version     int64      `gorm:"not null;default:1"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_items_owner_id,priority:2"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ItemModel) TableName() string {
	return "items"
}

// GormItemRepository is the GORM-based implementation of ItemRepository.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID retrieves an item by ID.
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	var model ItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Item", id.String())
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return toDomainItem(&model), nil
}

// FindByIDs retrieves the existing items among ids.
func (r *GormItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*item.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []ItemModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find items: %w", err)
	}
	return toDomainItems(models), nil
}

// FindByOwnerID returns one page of an owner's items, oldest first.
func (r *GormItemRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page domain.PageRequest) ([]*item.Item, error) {
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner items: %w", err)
	}
	return toDomainItems(models), nil
}

// FindByRequestIDs returns the items answering any of requestIDs, oldest first.
func (r *GormItemRepository) FindByRequestIDs(ctx context.Context, requestIDs []uuid.UUID) ([]*item.Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("request_id IN ?", requestIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find request items: %w", err)
	}
	return toDomainItems(models), nil
}

// Search returns available items matching text in name or description.
func (r *GormItemRepository) Search(ctx context.Context, text string, page domain.PageRequest) ([]*item.Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("available = ?", true).
		Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern).
		Order("created_at ASC").
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return toDomainItems(models), nil
}

// Save persists a new item.
func (r *GormItemRepository) Save(ctx context.Context, it *item.Item) error {
	if err := r.db.WithContext(ctx).Create(toItemModel(it)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &domain.DomainError{Kind: domain.KindConflict, Message: "item already exists", Err: err}
		}
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

// Update persists changes only over an older stored version. Local edits
// advance the version by one; catalog revisions may jump ahead.
func (r *GormItemRepository) Update(ctx context.Context, it *item.Item) error {
	result := r.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where("id = ? AND version < ?", it.ID(), it.Version()).
		Updates(map[string]interface{}{
			"name":        it.Name(),
			"description": it.Description(),
			"available":   it.Available(),
			"version":     it.Version(),
			"updated_at":  it.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update item: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("item was modified by another transaction")
	}

	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func toItemModel(it *item.Item) *ItemModel {
	m := &ItemModel{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		Version:     it.Version(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
	if requestID := it.RequestID(); requestID != uuid.Nil {
		m.RequestID = &requestID
	}
	return m
}

func toDomainItem(m *ItemModel) *item.Item {
	requestID := uuid.Nil
	if m.RequestID != nil {
		requestID = *m.RequestID
	}
	return item.Reconstruct(
		m.ID,
		m.OwnerID,
		requestID,
		m.Name,
		m.Description,
		m.Available,
		m.Version,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	)
}

func toDomainItems(models []ItemModel) []*item.Item {
	items := make([]*item.Item, len(models))
	for i := range models {
		items[i] = toDomainItem(&models[i])
	}
	return items
}
