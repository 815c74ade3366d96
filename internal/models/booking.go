package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusAttended  BookingStatus = "attended"
	StatusNoShow    BookingStatus = "no_show"
)

// Booking is a member's reservation against a SessionInstance. Bookings are
// never physically deleted; cancellation is a status change. At most one
// non-cancelled booking may exist per (member, session) pair, enforced by a
// partial unique index on top of the service-level check.
type Booking struct {
	ID                string        `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID          string        `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SessionInstanceID string        `gorm:"type:uuid;not null;index" json:"session_instance_id"`
	MemberID          string        `gorm:"not null;index" json:"member_id"`
	Status            BookingStatus `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	Notes             string        `json:"notes,omitempty"`
	BookedAt          time.Time     `gorm:"not null" json:"booked_at"`
	CancelledAt       *time.Time    `json:"cancelled_at,omitempty"`
	AttendedAt        *time.Time    `json:"attended_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	SessionInstance *SessionInstance `gorm:"foreignKey:SessionInstanceID" json:"session_instance,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.BookedAt.IsZero() {
		b.BookedAt = time.Now()
	}
	return nil
}
