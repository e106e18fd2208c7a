package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shareit-platform/service-booking/internal/domain/request"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// ItemRequestModel is the GORM model for the item_requests table.
type ItemRequestModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index:idx_item_requests_requester,priority:1"`
	Description string    `gorm:"not null;size:1000"`
	CreatedAt   time.Time `gorm:"not null;index:idx_item_requests_requester,priority:2,sort:desc"`
}

// TableName returns the table name for the GORM model.
func (ItemRequestModel) TableName() string {
	return "item_requests"
}

// GormItemRequestRepository is the GORM-based implementation of ItemRequestRepository.
type GormItemRequestRepository struct {
	db *gorm.DB
}

// NewGormItemRequestRepository creates a new GormItemRequestRepository.
func NewGormItemRequestRepository(db *gorm.DB) *GormItemRequestRepository {
	return &GormItemRequestRepository{db: db}
}

// FindByID retrieves an item request by ID.
func (r *GormItemRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*request.ItemRequest, error) {
	var model ItemRequestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ItemRequest", id.String())
		}
		return nil, fmt.Errorf("failed to find item request: %w", err)
	}
	return toDomainItemRequest(&model), nil
}

// FindByRequesterID returns a user's requests, newest first.
func (r *GormItemRequestRepository) FindByRequesterID(ctx context.Context, requesterID uuid.UUID) ([]*request.ItemRequest, error) {
	var models []ItemRequestModel
	if err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find user item requests: %w", err)
	}
	return toDomainItemRequests(models), nil
}

// FindOthers returns one page of other users' requests, newest first.
func (r *GormItemRequestRepository) FindOthers(ctx context.Context, requesterID uuid.UUID, page domain.PageRequest) ([]*request.ItemRequest, error) {
	var models []ItemRequestModel
	if err := r.db.WithContext(ctx).
		Where("requester_id <> ?", requesterID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find item requests: %w", err)
	}
	return toDomainItemRequests(models), nil
}

// Save persists a new item request.
func (r *GormItemRequestRepository) Save(ctx context.Context, req *request.ItemRequest) error {
	model := &ItemRequestModel{
		ID:          req.ID(),
		RequesterID: req.RequesterID(),
		Description: req.Description(),
		CreatedAt:   req.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save item request: %w", err)
	}
	return nil
}

func toDomainItemRequest(m *ItemRequestModel) *request.ItemRequest {
	return request.ReconstructItemRequest(m.ID, m.RequesterID, m.Description, m.CreatedAt.UTC())
}

func toDomainItemRequests(models []ItemRequestModel) []*request.ItemRequest {
	out := make([]*request.ItemRequest, len(models))
	for i := range models {
		out[i] = toDomainItemRequest(&models[i])
	}
	return out
}
