package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementEventType string

const (
	EventBookingCreated   MovementEventType = "booking_created"
	EventBookingCancelled MovementEventType = "booking_cancelled"
	EventClassAttendance  MovementEventType = "class_attendance"
	EventWaitlistJoined   MovementEventType = "waitlist_joined"
	EventWaitlistPromoted MovementEventType = "waitlist_promoted"
	EventBookingNoShow    MovementEventType = "booking_no_show"
)

// MovementEvent is an append-only audit record written as a side effect of
// every booking state transition. Rows are never updated.
type MovementEvent struct {
	ID                string            `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID          string            `gorm:"type:uuid;not null;index" json:"tenant_id"`
	MemberID          string            `gorm:"not null;index" json:"member_id"`
	SessionInstanceID *string           `gorm:"type:uuid;index" json:"session_instance_id,omitempty"`
	Type              MovementEventType `gorm:"type:varchar(40);not null;index" json:"type"`
	Metadata          map[string]any    `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

func (m *MovementEvent) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
