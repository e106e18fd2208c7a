package booking

import (
	"time"

	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// Period is a half-open booking window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod requires both bounds and Start strictly before End.
func NewPeriod(start, end *time.Time) (Period, error) {
	if start == nil || end == nil {
		return Period{}, domain.NewValidationError("start and end dates are required")
	}
	if start.Equal(*end) {
		return Period{}, domain.NewValidationError("start and end dates cannot be equal")
	}
	if end.Before(*start) {
		return Period{}, domain.NewValidationError("end date cannot be before start date")
	}
	return Period{Start: start.UTC(), End: end.UTC()}, nil
}

// RequireNotPast rejects windows that start before now or end at or before now.
func (p Period) RequireNotPast(now time.Time) error {
	if p.Start.Before(now) {
		return domain.NewValidationError("start date cannot be in the past")
	}
	if !p.End.After(now) {
		return domain.NewValidationError("end date must be in the future")
	}
	return nil
}
