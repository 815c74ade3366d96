package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCancelled SessionStatus = "cancelled"
	SessionCompleted SessionStatus = "completed"
)

// SessionInstance is one concrete scheduled occurrence of a SessionType at a
// Location. Capacity nil means unlimited. Invariant: no two non-cancelled
// instances at the same location overlap in [StartTime, EndTime).
type SessionInstance struct {
	ID            string        `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID      string        `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SessionTypeID string        `gorm:"type:uuid;not null;index" json:"session_type_id"`
	LocationID    string        `gorm:"type:uuid;not null;index:idx_session_location_time" json:"location_id"`
	StartTime     time.Time     `gorm:"not null;index:idx_session_location_time" json:"start_time"`
	EndTime       time.Time     `gorm:"not null" json:"end_time"`
	Capacity      *int          `json:"capacity,omitempty"`
	Instructor    string        `json:"instructor,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	Status        SessionStatus `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	SessionType *SessionType `gorm:"foreignKey:SessionTypeID" json:"session_type,omitempty"`
	Location    *Location    `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

func (s *SessionInstance) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
