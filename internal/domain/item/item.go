package item

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// Item is the aggregate root for a shareable item. Its owner never changes.
// An item listed in answer to an item request keeps that request's id.
type Item struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	requestID   uuid.UUID
	name        string
	description string
	available   bool
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewItem validates and creates an item. A zero id means "generate one".
func NewItem(id, ownerID uuid.UUID, name, description string, available bool) (*Item, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("item name is required")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.NewValidationError("item description is required")
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	now := time.Now().UTC()
	return &Item{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an Item from persistence data (no validation).
func Reconstruct(
	id, ownerID, requestID uuid.UUID,
	name, description string,
	available bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Item {
	return &Item{
		id:          id,
		ownerID:     ownerID,
		requestID:   requestID,
		name:        name,
		description: description,
		available:   available,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (i *Item) ID() uuid.UUID        { return i.id }
func (i *Item) OwnerID() uuid.UUID   { return i.ownerID }
func (i *Item) RequestID() uuid.UUID { return i.requestID }
func (i *Item) Name() string         { return i.name }
func (i *Item) Description() string  { return i.description }
func (i *Item) Available() bool      { return i.available }
func (i *Item) Version() int64       { return i.version }
func (i *Item) CreatedAt() time.Time { return i.createdAt }
func (i *Item) UpdatedAt() time.Time { return i.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the item belongs to the given user.
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.ownerID == userID
}

// LinkRequest records the item request this item answers. It is set once,
// before the item is first saved.
func (i *Item) LinkRequest(requestID uuid.UUID) {
	i.requestID = requestID
}

// Patch holds optional field replacements. Nil fields are left untouched.
type Patch struct {
	Name        *string
	Description *string
	Available   *bool
}

// Apply validates and applies a patch, bumping the version.
func (i *Item) Apply(p Patch) error {
	name, description := i.name, i.description
	if p.Name != nil {
		name = strings.TrimSpace(*p.Name)
		if name == "" {
			return domain.NewValidationError("item name cannot be blank")
		}
	}
	if p.Description != nil {
		description = strings.TrimSpace(*p.Description)
		if description == "" {
			return domain.NewValidationError("item description cannot be blank")
		}
	}

	i.name = name
	i.description = description
	if p.Available != nil {
		i.available = *p.Available
	}
	i.version++
	i.updatedAt = time.Now().UTC()
	return nil
}

// Matches reports whether text occurs in the name or description, ignoring case.
func (i *Item) Matches(text string) bool {
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(i.name), needle) ||
		strings.Contains(strings.ToLower(i.description), needle)
}

// Revision is an item state announced on the catalog topic.
type Revision struct {
	Name        string
	Description string
	Available   bool
	Version     int64
}

// Sync adopts rev if it is newer than the local version and reports whether
// it did. Older or equal revisions are ignored.
func (i *Item) Sync(rev Revision) (bool, error) {
	if rev.Version <= i.version {
		return false, nil
	}
	name := strings.TrimSpace(rev.Name)
	description := strings.TrimSpace(rev.Description)
	if name == "" || description == "" {
		return false, domain.NewValidationError("catalog revision is missing name or description")
	}

	i.name = name
	i.description = description
	i.available = rev.Available
	i.version = rev.Version
	i.updatedAt = time.Now().UTC()
	return true, nil
}
