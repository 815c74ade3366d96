package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Location is a venue owned by a tenant. Same soft-delete lifecycle as
// SessionType.
type Location struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID  string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_location_name" json:"tenant_id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_location_name" json:"name"`
	Address   string    `json:"address"`
	Capacity  int       `json:"capacity"`
	Timezone  string    `gorm:"default:'UTC'" json:"timezone"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
