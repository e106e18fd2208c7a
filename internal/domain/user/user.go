package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// User is the local read model of a platform member.
type User struct {
	id        uuid.UUID
	name      string
	email     string
	createdAt time.Time
	updatedAt time.Time
}

// NewUser validates and creates a user. A zero id means "generate one".
func NewUser(id uuid.UUID, name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("user name is required")
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.NewValidationError("user email is invalid")
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	now := time.Now().UTC()
	return &User{
		id:        id,
		name:      name,
		email:     strings.ToLower(email),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a User from persistence data (no validation).
func Reconstruct(id uuid.UUID, name, email string, createdAt, updatedAt time.Time) *User {
	return &User{id: id, name: name, email: email, createdAt: createdAt, updatedAt: updatedAt}
}

// --- Getters ---

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// Rename replaces the profile fields, keeping the id.
func (u *User) Rename(name, email string) error {
	updated, err := NewUser(u.id, name, email)
	if err != nil {
		return err
	}
	u.name = updated.name
	u.email = updated.email
	u.updatedAt = updated.updatedAt
	return nil
}

// UserRepository defines persistence operations for the user directory.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// Save inserts a new user. A duplicate email is a ConflictError.
	Save(ctx context.Context, u *User) error
	// Upsert inserts or replaces a user by id.
	Upsert(ctx context.Context, u *User) error
}
