// Package events holds the Kafka topic names and CloudEvent payloads the
// booking service produces and consumes.
package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicBookingEvents = "booking.events"
	TopicCatalogEvents = "catalog.events"
)

// Booking lifecycle event types.
const (
	BookingCreated  = "booking.created"
	BookingApproved = "booking.approved"
	BookingRejected = "booking.rejected"
)

// Catalog event types.
const (
	UserRegistered = "user.registered"
	ItemUpserted   = "item.upserted"
)

// BookingCreatedEvent is published when a booking request is persisted.
type BookingCreatedEvent struct {
	BookingID   uuid.UUID `json:"bookingId"`
	ItemID      uuid.UUID `json:"itemId"`
	ItemOwnerID uuid.UUID `json:"itemOwnerId"`
	BookerID    uuid.UUID `json:"bookerId"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// BookingDecidedEvent is published when the owner approves or rejects.
type BookingDecidedEvent struct {
	BookingID  uuid.UUID `json:"bookingId"`
	ItemID     uuid.UUID `json:"itemId"`
	BookerID   uuid.UUID `json:"bookerId"`
	DecidedBy  uuid.UUID `json:"decidedBy"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

// UserRegisteredEvent announces a platform member.
type UserRegisteredEvent struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

// ItemUpsertedEvent announces a new or changed catalog item. Version grows
// with every change; consumers apply only versions newer than they hold.
type ItemUpsertedEvent struct {
	ItemID      uuid.UUID  `json:"itemId"`
	OwnerID     uuid.UUID  `json:"ownerId"`
	RequestID   *uuid.UUID `json:"requestId,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Available   bool       `json:"available"`
	Version     int64      `json:"version"`
}
