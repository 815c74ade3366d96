package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moveos/scheduling-service/internal/models"
	"github.com/moveos/scheduling-service/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BookingGate is the pluggable membership/billing check consulted before a
// booking is created. The default allows everyone.
type BookingGate interface {
	CanBook(ctx context.Context, memberID string) bool
}

type allowAllGate struct{}

func (allowAllGate) CanBook(context.Context, string) bool { return true }

// AllowAllGate is the default BookingGate.
func AllowAllGate() BookingGate { return allowAllGate{} }

// Roster is a session's attendance view: seated bookings plus the queue.
type Roster struct {
	Session  *models.SessionInstance `json:"session"`
	Bookings []models.Booking        `json:"bookings"`
	Waitlist []models.WaitlistEntry  `json:"waitlist"`
}

type BookingService interface {
	CreateBooking(ctx context.Context, sessionID, memberID, notes string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, memberID string) (*models.Booking, error)
	CheckIn(ctx context.Context, sessionID, memberID string) (*models.Booking, error)
	MarkNoShow(ctx context.Context, bookingID string) (*models.Booking, error)
	ListMemberBookings(ctx context.Context, memberID string, status *models.BookingStatus) ([]models.Booking, error)
	Roster(ctx context.Context, sessionID string) (*Roster, error)
}

type bookingService struct {
	bookings  repository.BookingRepository
	sessions  repository.SessionRepository
	waitlists WaitlistService
	movements MovementService
	gate      BookingGate
	log       *zap.Logger

	cancelLead   time.Duration
	checkInGrace time.Duration
}

func NewBookingService(
	bookings repository.BookingRepository,
	sessions repository.SessionRepository,
	waitlists WaitlistService,
	movements MovementService,
	gate BookingGate,
	cancelLead, checkInGrace time.Duration,
	log *zap.Logger,
) BookingService {
	if gate == nil {
		gate = AllowAllGate()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &bookingService{
		bookings:     bookings,
		sessions:     sessions,
		waitlists:    waitlists,
		movements:    movements,
		gate:         gate,
		log:          log,
		cancelLead:   cancelLead,
		checkInGrace: checkInGrace,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, sessionID, memberID, notes string) (*models.Booking, error) {
	if !s.gate.CanBook(ctx, memberID) {
		return nil, ErrBookingNotAllowed
	}

	var result *models.Booking
	var recorded []*models.MovementEvent

	err := s.bookings.Transact(ctx, func(tx *gorm.DB) error {
		// Row-level lock on the session serializes concurrent attempts on
		// the same seat pool; the count below cannot go stale before the
		// insert commits.
		session, err := s.sessions.FindByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		if session.Status != models.SessionScheduled {
			return ErrSessionNotBookable
		}
		if !session.StartTime.After(time.Now()) {
			return ErrSessionStarted
		}

		if _, err := s.bookings.FindActiveByMemberAndSession(ctx, tx, memberID, sessionID); err == nil {
			return ErrAlreadyBooked
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if session.Capacity != nil {
			count, err := s.bookings.CountActive(ctx, tx, sessionID)
			if err != nil {
				return err
			}
			if count >= int64(*session.Capacity) {
				return ErrSessionFull
			}
		}

		booking := &models.Booking{
			SessionInstanceID: sessionID,
			MemberID:          memberID,
			Status:            models.StatusConfirmed,
			Notes:             notes,
		}
		if err := s.bookings.Create(ctx, tx, booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		event := &models.MovementEvent{
			MemberID:          memberID,
			SessionInstanceID: &sessionID,
			Type:              models.EventBookingCreated,
			Metadata: map[string]any{
				"booking_id": booking.ID,
				"start_time": session.StartTime.Format(time.RFC3339),
				"instructor": session.Instructor,
			},
		}
		if err := s.movements.Record(ctx, tx, event); err != nil {
			return err
		}
		recorded = append(recorded, event)

		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(recorded)
	s.log.Info("booking created",
		zap.String("booking_id", result.ID),
		zap.String("session_id", sessionID),
		zap.String("member_id", memberID))
	return result, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID, memberID string) (*models.Booking, error) {
	var result *models.Booking
	var recorded []*models.MovementEvent

	err := s.bookings.Transact(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookings.FindByIDForMember(ctx, bookingID, memberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if booking.Status != models.StatusConfirmed {
			return ErrBookingNotConfirmed
		}
		if booking.SessionInstance == nil {
			return fmt.Errorf("booking %s has no session attached", booking.ID)
		}

		now := time.Now()
		if booking.SessionInstance.StartTime.Sub(now) < s.cancelLead {
			return ErrCancelWindowClosed
		}

		// Lock the session so the freed seat and the promotion below are one
		// atomic step with respect to concurrent booking attempts.
		session, err := s.sessions.FindByIDForUpdate(ctx, tx, booking.SessionInstanceID)
		if err != nil {
			return err
		}

		// The booking was read before the lock; the conditional transition is
		// what decides the race. A concurrent cancel that committed first
		// leaves zero rows to update here.
		changed, err := s.bookings.TransitionStatus(ctx, tx, booking.ID, models.StatusConfirmed, map[string]any{
			"status":       models.StatusCancelled,
			"cancelled_at": now,
		})
		if err != nil {
			return err
		}
		if !changed {
			return ErrBookingNotConfirmed
		}
		booking.Status = models.StatusCancelled
		booking.CancelledAt = &now

		event := &models.MovementEvent{
			MemberID:          booking.MemberID,
			SessionInstanceID: &booking.SessionInstanceID,
			Type:              models.EventBookingCancelled,
			Metadata: map[string]any{
				"booking_id":   booking.ID,
				"cancelled_at": now.Format(time.RFC3339),
			},
		}
		if err := s.movements.Record(ctx, tx, event); err != nil {
			return err
		}
		recorded = append(recorded, event)

		promoted, promotedEvents, err := s.waitlists.PromoteNext(ctx, tx, session)
		if err != nil {
			return err
		}
		if promoted != nil {
			recorded = append(recorded, promotedEvents...)
		}

		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(recorded)
	s.log.Info("booking cancelled",
		zap.String("booking_id", result.ID),
		zap.String("member_id", memberID))
	return result, nil
}

func (s *bookingService) CheckIn(ctx context.Context, sessionID, memberID string) (*models.Booking, error) {
	booking, err := s.bookings.FindConfirmedByMemberAndSession(ctx, memberID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.SessionInstance == nil {
		return nil, fmt.Errorf("booking %s has no session attached", booking.ID)
	}

	now := time.Now()
	if now.Before(booking.SessionInstance.StartTime) {
		return nil, ErrSessionNotStarted
	}
	if now.After(booking.SessionInstance.EndTime.Add(s.checkInGrace)) {
		return nil, ErrCheckInExpired
	}

	var recorded []*models.MovementEvent
	err = s.bookings.Transact(ctx, func(tx *gorm.DB) error {
		changed, err := s.bookings.TransitionStatus(ctx, tx, booking.ID, models.StatusConfirmed, map[string]any{
			"status":      models.StatusAttended,
			"attended_at": now,
		})
		if err != nil {
			return err
		}
		if !changed {
			// Cancelled or already checked in since the read above.
			return ErrBookingNotConfirmed
		}

		event := &models.MovementEvent{
			MemberID:          memberID,
			SessionInstanceID: &sessionID,
			Type:              models.EventClassAttendance,
			Metadata: map[string]any{
				"booking_id":    booking.ID,
				"checked_in_at": now.Format(time.RFC3339),
				"instructor":    booking.SessionInstance.Instructor,
			},
		}
		if err := s.movements.Record(ctx, tx, event); err != nil {
			return err
		}
		recorded = append(recorded, event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking.Status = models.StatusAttended
	booking.AttendedAt = &now

	s.emit(recorded)
	s.log.Info("member checked in",
		zap.String("session_id", sessionID),
		zap.String("member_id", memberID))
	return booking, nil
}

// MarkNoShow is the administrative path for post-hoc reconciliation; it has
// no time-window restriction.
func (s *bookingService) MarkNoShow(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.Status != models.StatusConfirmed {
		return nil, ErrBookingNotConfirmed
	}

	var recorded []*models.MovementEvent
	err = s.bookings.Transact(ctx, func(tx *gorm.DB) error {
		changed, err := s.bookings.TransitionStatus(ctx, tx, booking.ID, models.StatusConfirmed, map[string]any{
			"status": models.StatusNoShow,
		})
		if err != nil {
			return err
		}
		if !changed {
			return ErrBookingNotConfirmed
		}

		event := &models.MovementEvent{
			MemberID:          booking.MemberID,
			SessionInstanceID: &booking.SessionInstanceID,
			Type:              models.EventBookingNoShow,
			Metadata:          map[string]any{"booking_id": booking.ID},
		}
		if err := s.movements.Record(ctx, tx, event); err != nil {
			return err
		}
		recorded = append(recorded, event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking.Status = models.StatusNoShow
	s.emit(recorded)
	return booking, nil
}

func (s *bookingService) ListMemberBookings(ctx context.Context, memberID string, status *models.BookingStatus) ([]models.Booking, error) {
	return s.bookings.ListByMember(ctx, memberID, status)
}

func (s *bookingService) Roster(ctx context.Context, sessionID string) (*Roster, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	bookings, err := s.bookings.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	waitlist, err := s.waitlists.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &Roster{Session: session, Bookings: bookings, Waitlist: waitlist}, nil
}

func (s *bookingService) emit(events []*models.MovementEvent) {
	for _, event := range events {
		s.movements.Emit(event)
	}
}
