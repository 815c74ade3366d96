package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/moveos/scheduling-service/internal/models"
)

// Capacity tells an absent field (inherit the session type's default) apart
// from an explicit null (no seat limit).
type Capacity struct {
	Set   bool
	Value *int
}

func (c *Capacity) UnmarshalJSON(data []byte) error {
	c.Set = true
	if bytes.Equal(data, []byte("null")) {
		c.Value = nil
		return nil
	}
	return json.Unmarshal(data, &c.Value)
}

type CreateSessionTypeRequest struct {
	Name            string            `json:"name" validate:"required"`
	Category        string            `json:"category"`
	DurationMinutes int               `json:"duration_minutes" validate:"required,gt=0"`
	MaxCapacity     *int              `json:"max_capacity,omitempty"`
	Difficulty      models.Difficulty `json:"difficulty,omitempty"`
}

type UpdateSessionTypeRequest struct {
	Name            *string            `json:"name,omitempty"`
	Category        *string            `json:"category,omitempty"`
	DurationMinutes *int               `json:"duration_minutes,omitempty"`
	MaxCapacity     *int               `json:"max_capacity,omitempty"`
	Difficulty      *models.Difficulty `json:"difficulty,omitempty"`
}

type CreateLocationRequest struct {
	Name     string `json:"name" validate:"required"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	Timezone string `json:"timezone"`
}

type UpdateLocationRequest struct {
	Name     *string `json:"name,omitempty"`
	Address  *string `json:"address,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
}

type ScheduleSessionRequest struct {
	SessionTypeID string     `json:"session_type_id" validate:"required"`
	LocationID    string     `json:"location_id" validate:"required"`
	StartTime     time.Time  `json:"start_time" validate:"required"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	Capacity      Capacity   `json:"capacity"`
	Instructor    string     `json:"instructor,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

type UpdateSessionRequest struct {
	SessionTypeID *string    `json:"session_type_id,omitempty"`
	LocationID    *string    `json:"location_id,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	Capacity      Capacity   `json:"capacity"`
	Instructor    *string    `json:"instructor,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

type CreateBookingRequest struct {
	Notes string `json:"notes,omitempty"`
}
