package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// SessionType is an activity template owned by a tenant. Deactivated rather
// than deleted because historical SessionInstances keep referencing it.
type SessionType struct {
	ID              string     `gorm:"primaryKey;type:uuid" json:"id"`
	TenantID        string     `gorm:"type:uuid;not null;index;uniqueIndex:idx_session_type_name" json:"tenant_id"`
	Name            string     `gorm:"not null;uniqueIndex:idx_session_type_name" json:"name"`
	Category        string     `json:"category"`
	DurationMinutes int        `gorm:"not null" json:"duration_minutes"`
	MaxCapacity     *int       `json:"max_capacity,omitempty"`
	Difficulty      Difficulty `gorm:"type:varchar(20)" json:"difficulty,omitempty"`
	Active          bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (st *SessionType) BeforeCreate(tx *gorm.DB) error {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	return nil
}
