package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WaitlistEntry is a member's place in the FIFO queue of a full session.
// Positions per session are dense (1..N, no gaps); they are recomputed
// whenever an entry is removed.
type WaitlistEntry struct {
	ID                string    `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID          string    `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SessionInstanceID string    `gorm:"type:uuid;not null;index" json:"session_instance_id"`
	MemberID          string    `gorm:"not null" json:"member_id"`
	Position          int       `gorm:"not null" json:"position"`
	JoinedAt          time.Time `gorm:"not null" json:"joined_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (w *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.JoinedAt.IsZero() {
		w.JoinedAt = time.Now()
	}
	return nil
}
