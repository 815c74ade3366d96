package dto

import (
	"time"

	"github.com/moveos/scheduling-service/internal/models"
)

type BookingResponse struct {
	ID                string               `json:"id"`
	SessionInstanceID string               `json:"session_instance_id"`
	MemberID          string               `json:"member_id"`
	Status            models.BookingStatus `json:"status"`
	Notes             string               `json:"notes,omitempty"`
	BookedAt          time.Time            `json:"booked_at"`
	CancelledAt       *time.Time           `json:"cancelled_at,omitempty"`
	AttendedAt        *time.Time           `json:"attended_at,omitempty"`
}

type SessionResponse struct {
	ID            string               `json:"id"`
	SessionTypeID string               `json:"session_type_id"`
	LocationID    string               `json:"location_id"`
	SessionType   string               `json:"session_type,omitempty"`
	Location      string               `json:"location,omitempty"`
	StartTime     time.Time            `json:"start_time"`
	EndTime       time.Time            `json:"end_time"`
	Capacity      *int                 `json:"capacity,omitempty"`
	Instructor    string               `json:"instructor,omitempty"`
	Status        models.SessionStatus `json:"status"`
}

type WaitlistEntryResponse struct {
	ID                string    `json:"id"`
	SessionInstanceID string    `json:"session_instance_id"`
	MemberID          string    `json:"member_id"`
	Position          int       `json:"position"`
	JoinedAt          time.Time `json:"joined_at"`
}

type RosterResponse struct {
	Session  SessionResponse         `json:"session"`
	Bookings []BookingResponse       `json:"bookings"`
	Waitlist []WaitlistEntryResponse `json:"waitlist"`
}

type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
}

type SessionListResponse struct {
	Data       []SessionResponse `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:                b.ID,
		SessionInstanceID: b.SessionInstanceID,
		MemberID:          b.MemberID,
		Status:            b.Status,
		Notes:             b.Notes,
		BookedAt:          b.BookedAt,
		CancelledAt:       b.CancelledAt,
		AttendedAt:        b.AttendedAt,
	}
}

func ToSessionResponse(s *models.SessionInstance) SessionResponse {
	resp := SessionResponse{
		ID:            s.ID,
		SessionTypeID: s.SessionTypeID,
		LocationID:    s.LocationID,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Capacity:      s.Capacity,
		Instructor:    s.Instructor,
		Status:        s.Status,
	}
	if s.SessionType != nil {
		resp.SessionType = s.SessionType.Name
	}
	if s.Location != nil {
		resp.Location = s.Location.Name
	}
	return resp
}

func ToWaitlistEntryResponse(w *models.WaitlistEntry) WaitlistEntryResponse {
	return WaitlistEntryResponse{
		ID:                w.ID,
		SessionInstanceID: w.SessionInstanceID,
		MemberID:          w.MemberID,
		Position:          w.Position,
		JoinedAt:          w.JoinedAt,
	}
}
