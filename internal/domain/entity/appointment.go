package entity

import (
	"time"

	"github.com/google/uuid"
)

// LocationType says where an appointment takes place.
type LocationType string

const (
	LocationOnline   LocationType = "online"
	LocationPhysical LocationType = "physical"
)

// IsValid returns true for a known location type.
func (l LocationType) IsValid() bool {
	return l == LocationOnline || l == LocationPhysical
}

// Appointment is a scheduled follow-up discussion about fund requests.
// There is no calendar integration; the record itself is the schedule.
type Appointment struct {
	ID           int64
	ScheduledOn  string // date, YYYY-MM-DD
	ScheduledAt  string // time of day, HH:MM
	LocationType LocationType
	Description  string
	CreatedBy    *uuid.UUID
	CreatedAt    time.Time
}
