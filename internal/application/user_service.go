package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit-platform/service-booking/internal/domain/user"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
	"github.com/shareit-platform/service-booking/internal/platform/kafka"
	"github.com/shareit-platform/service-booking/internal/proto/events"
)

// RegisterUserRequest holds the data needed to register a user.
type RegisterUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// UserDTO is the response representation of a user.
type UserDTO struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// UserService manages the local user directory.
type UserService struct {
	repo      user.UserRepository
	publisher kafka.Publisher
	logger    *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo user.UserRepository, publisher kafka.Publisher, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, publisher: publisher, logger: logger}
}

// RegisterUser creates a user. Emails are unique.
func (s *UserService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*UserDTO, error) {
	u, err := user.NewUser(uuid.Nil, req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, u); err != nil {
		if domain.IsConflict(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID().String()))

	evt := events.UserRegisteredEvent{UserID: u.ID(), Name: u.Name(), Email: u.Email()}
	publishEvent(ctx, s.publisher, s.logger, events.TopicCatalogEvents, events.UserRegistered, u.ID().String(), evt)

	result := toUserDTO(u)
	return &result, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toUserDTO(u)
	return &result, nil
}

// UpsertFromCatalog applies a user announced on the catalog topic.
func (s *UserService) UpsertFromCatalog(ctx context.Context, evt events.UserRegisteredEvent) error {
	if evt.UserID == uuid.Nil {
		return domain.NewValidationError("user ID is required")
	}
	u, err := user.NewUser(evt.UserID, evt.Name, evt.Email)
	if err != nil {
		return err
	}
	return s.repo.Upsert(ctx, u)
}

func toUserDTO(u *user.User) UserDTO {
	return UserDTO{ID: u.ID(), Name: u.Name(), Email: u.Email()}
}
