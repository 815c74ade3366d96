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

type WaitlistService interface {
	Join(ctx context.Context, sessionID, memberID string) (*models.WaitlistEntry, error)
	Leave(ctx context.Context, sessionID, memberID string) error
	ListBySession(ctx context.Context, sessionID string) ([]models.WaitlistEntry, error)
	// PromoteNext pops the head of the queue and books the freed seat on that
	// member's behalf within the caller's transaction. A head that can no
	// longer be booked is discarded without cascading to the next entry.
	PromoteNext(ctx context.Context, tx *gorm.DB, session *models.SessionInstance) (*models.Booking, []*models.MovementEvent, error)
}

type waitlistService struct {
	entries   repository.WaitlistRepository
	bookings  repository.BookingRepository
	sessions  repository.SessionRepository
	movements MovementService
	log       *zap.Logger
}

func NewWaitlistService(entries repository.WaitlistRepository, bookings repository.BookingRepository, sessions repository.SessionRepository, movements MovementService, log *zap.Logger) WaitlistService {
	if log == nil {
		log = zap.NewNop()
	}
	return &waitlistService{entries: entries, bookings: bookings, sessions: sessions, movements: movements, log: log}
}

func (s *waitlistService) Join(ctx context.Context, sessionID, memberID string) (*models.WaitlistEntry, error) {
	var entry *models.WaitlistEntry
	var recorded []*models.MovementEvent

	err := s.bookings.Transact(ctx, func(tx *gorm.DB) error {
		// The session row lock serializes position assignment with
		// concurrent joins and with promotions.
		if _, err := s.sessions.FindByIDForUpdate(ctx, tx, sessionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		if _, err := s.entries.FindByMemberAndSession(ctx, tx, memberID, sessionID); err == nil {
			return ErrAlreadyWaitlisted
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if existing, err := s.bookings.FindActiveByMemberAndSession(ctx, tx, memberID, sessionID); err == nil {
			if existing.Status == models.StatusConfirmed {
				return ErrAlreadyBooked
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		count, err := s.entries.CountBySession(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		entry = &models.WaitlistEntry{
			SessionInstanceID: sessionID,
			MemberID:          memberID,
			Position:          int(count) + 1,
		}
		if err := s.entries.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("join waitlist: %w", err)
		}

		event := &models.MovementEvent{
			MemberID:          memberID,
			SessionInstanceID: &sessionID,
			Type:              models.EventWaitlistJoined,
			Metadata:          map[string]any{"position": entry.Position},
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

	for _, event := range recorded {
		s.movements.Emit(event)
	}
	s.log.Info("member joined waitlist",
		zap.String("session_id", sessionID),
		zap.String("member_id", memberID),
		zap.Int("position", entry.Position))
	return entry, nil
}

func (s *waitlistService) Leave(ctx context.Context, sessionID, memberID string) error {
	err := s.bookings.Transact(ctx, func(tx *gorm.DB) error {
		if _, err := s.sessions.FindByIDForUpdate(ctx, tx, sessionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		entry, err := s.entries.FindByMemberAndSession(ctx, tx, memberID, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotOnWaitlist
			}
			return err
		}

		if err := s.entries.Delete(ctx, tx, entry.ID); err != nil {
			return err
		}
		return s.recomputePositions(ctx, tx, sessionID)
	})
	if err != nil {
		return err
	}

	s.log.Info("member left waitlist",
		zap.String("session_id", sessionID),
		zap.String("member_id", memberID))
	return nil
}

func (s *waitlistService) ListBySession(ctx context.Context, sessionID string) ([]models.WaitlistEntry, error) {
	return s.entries.ListBySession(ctx, nil, sessionID)
}

func (s *waitlistService) PromoteNext(ctx context.Context, tx *gorm.DB, session *models.SessionInstance) (*models.Booking, []*models.MovementEvent, error) {
	entry, err := s.entries.First(ctx, tx, session.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	// The head leaves the queue whether or not the booking succeeds; a
	// failed promotion waits for the next freed seat to try the new head.
	if err := s.entries.Delete(ctx, tx, entry.ID); err != nil {
		return nil, nil, err
	}
	if err := s.recomputePositions(ctx, tx, session.ID); err != nil {
		return nil, nil, err
	}

	if session.Status != models.SessionScheduled || !session.StartTime.After(time.Now()) {
		s.log.Warn("waitlist promotion discarded, session no longer bookable",
			zap.String("session_id", session.ID),
			zap.String("member_id", entry.MemberID))
		return nil, nil, nil
	}
	if _, err := s.bookings.FindActiveByMemberAndSession(ctx, tx, entry.MemberID, session.ID); err == nil {
		return nil, nil, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	booking := &models.Booking{
		SessionInstanceID: session.ID,
		MemberID:          entry.MemberID,
		Status:            models.StatusConfirmed,
	}
	if err := s.bookings.Create(ctx, tx, booking); err != nil {
		return nil, nil, err
	}

	event := &models.MovementEvent{
		MemberID:          entry.MemberID,
		SessionInstanceID: &session.ID,
		Type:              models.EventWaitlistPromoted,
		Metadata:          map[string]any{"booking_id": booking.ID},
	}
	if err := s.movements.Record(ctx, tx, event); err != nil {
		return nil, nil, err
	}

	s.log.Info("waitlist member promoted",
		zap.String("session_id", session.ID),
		zap.String("member_id", entry.MemberID))
	return booking, []*models.MovementEvent{event}, nil
}

// recomputePositions rewrites the queue to a dense 1..N sequence in joined
// order after a removal.
func (s *waitlistService) recomputePositions(ctx context.Context, tx *gorm.DB, sessionID string) error {
	entries, err := s.entries.ListBySession(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	for i, entry := range entries {
		if entry.Position != i+1 {
			if err := s.entries.UpdatePosition(ctx, tx, entry.ID, i+1); err != nil {
				return err
			}
		}
	}
	return nil
}
