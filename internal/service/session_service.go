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

// ListingCache fronts the public availability listing. Implementations may be
// nil'd out entirely; the service treats a miss and no cache identically.
type ListingCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any)
	InvalidatePrefix(ctx context.Context, prefix string)
}

const availableCachePrefix = "sessions:available:"

type ScheduleSessionInput struct {
	SessionTypeID string
	LocationID    string
	StartTime     time.Time
	EndTime       *time.Time
	// Capacity applies only when CapacitySet; a set nil means no seat limit,
	// unset inherits the session type's default.
	Capacity    *int
	CapacitySet bool
	Instructor  string
	Notes       string
}

// UpdateSessionInput carries a partial update; unset fields are untouched.
type UpdateSessionInput struct {
	SessionTypeID *string
	LocationID    *string
	StartTime     *time.Time
	EndTime       *time.Time
	Capacity      *int
	CapacitySet   bool
	Instructor    *string
	Notes         *string
}

// AvailableSession is the public availability view of a bookable session.
type AvailableSession struct {
	models.SessionInstance
	SpotsAvailable *int `json:"spots_available,omitempty"`
}

type SessionService interface {
	Schedule(ctx context.Context, in ScheduleSessionInput) (*models.SessionInstance, error)
	Update(ctx context.Context, id string, in UpdateSessionInput) (*models.SessionInstance, error)
	Cancel(ctx context.Context, id string) (*models.SessionInstance, error)
	Complete(ctx context.Context, id string) (*models.SessionInstance, error)
	Get(ctx context.Context, id string) (*models.SessionInstance, error)
	List(ctx context.Context, filter repository.SessionFilter) ([]models.SessionInstance, int64, error)
	// ListAvailable is the tenant-agnostic discovery listing: scheduled,
	// future, with seats left.
	ListAvailable(ctx context.Context, filter repository.SessionFilter) ([]AvailableSession, error)
}

type sessionService struct {
	sessions  repository.SessionRepository
	bookings  repository.BookingRepository
	catalog   CatalogService
	waitlists WaitlistService
	movements MovementService
	cache     ListingCache
	log       *zap.Logger
}

func NewSessionService(
	sessions repository.SessionRepository,
	bookings repository.BookingRepository,
	catalog CatalogService,
	waitlists WaitlistService,
	movements MovementService,
	cache ListingCache,
	log *zap.Logger,
) SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &sessionService{
		sessions:  sessions,
		bookings:  bookings,
		catalog:   catalog,
		waitlists: waitlists,
		movements: movements,
		cache:     cache,
		log:       log,
	}
}

func (s *sessionService) Schedule(ctx context.Context, in ScheduleSessionInput) (*models.SessionInstance, error) {
	sessionType, err := s.catalog.ResolveSessionType(ctx, in.SessionTypeID)
	if err != nil {
		return nil, err
	}
	location, err := s.catalog.ResolveLocation(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}

	// The implicit end time has to exist before the overlap check runs; a
	// session with a defaulted end still must not collide.
	endTime := in.StartTime.Add(time.Duration(sessionType.DurationMinutes) * time.Minute)
	if in.EndTime != nil {
		endTime = *in.EndTime
	}
	if !endTime.After(in.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	if err := s.checkOverlap(ctx, location.ID, in.StartTime, endTime, ""); err != nil {
		return nil, err
	}

	capacity := sessionType.MaxCapacity
	if in.CapacitySet {
		capacity = in.Capacity
	}

	session := &models.SessionInstance{
		SessionTypeID: sessionType.ID,
		LocationID:    location.ID,
		StartTime:     in.StartTime,
		EndTime:       endTime,
		Capacity:      capacity,
		Instructor:    in.Instructor,
		Notes:         in.Notes,
		Status:        models.SessionScheduled,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("schedule session: %w", err)
	}

	s.invalidateListings(ctx)
	s.log.Info("session scheduled",
		zap.String("session_id", session.ID),
		zap.String("location_id", location.ID),
		zap.Time("start_time", session.StartTime))

	return s.Get(ctx, session.ID)
}

func (s *sessionService) Update(ctx context.Context, id string, in UpdateSessionInput) (*models.SessionInstance, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}

	start, end, locationID := session.StartTime, session.EndTime, session.LocationID
	if in.StartTime != nil {
		start = *in.StartTime
		fields["start_time"] = start
	}
	if in.EndTime != nil {
		end = *in.EndTime
		fields["end_time"] = end
	}
	if in.LocationID != nil && *in.LocationID != session.LocationID {
		location, err := s.catalog.ResolveLocation(ctx, *in.LocationID)
		if err != nil {
			return nil, err
		}
		locationID = location.ID
		fields["location_id"] = locationID
	}

	if in.StartTime != nil || in.EndTime != nil || in.LocationID != nil {
		if !end.After(start) {
			return nil, ErrInvalidTimeRange
		}
		if err := s.checkOverlap(ctx, locationID, start, end, id); err != nil {
			return nil, err
		}
	}

	if in.SessionTypeID != nil && *in.SessionTypeID != session.SessionTypeID {
		sessionType, err := s.catalog.ResolveSessionType(ctx, *in.SessionTypeID)
		if err != nil {
			return nil, err
		}
		fields["session_type_id"] = sessionType.ID
	}
	if in.CapacitySet {
		fields["capacity"] = in.Capacity
	}
	if in.Instructor != nil {
		fields["instructor"] = *in.Instructor
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}

	capacityRaised := in.CapacitySet && in.Capacity != nil &&
		session.Capacity != nil && *in.Capacity > *session.Capacity

	if len(fields) > 0 {
		if err := s.sessions.UpdateFields(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("update session: %w", err)
		}
		s.invalidateListings(ctx)
	}

	if capacityRaised && session.Status == models.SessionScheduled {
		if err := s.promoteIntoFreedSeats(ctx, id); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, id)
}

// promoteIntoFreedSeats offers newly opened seats to the waitlist after a
// capacity raise. Each free seat gets exactly one attempt at the current
// head; a head that can no longer book is dropped without consuming the
// remaining seats.
func (s *sessionService) promoteIntoFreedSeats(ctx context.Context, sessionID string) error {
	if s.waitlists == nil {
		return nil
	}
	queued, err := s.waitlists.ListBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	if len(queued) == 0 {
		return nil
	}

	var recorded []*models.MovementEvent
	err = s.bookings.Transact(ctx, func(tx *gorm.DB) error {
		session, err := s.sessions.FindByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if session.Capacity == nil {
			return nil
		}
		count, err := s.bookings.CountActive(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		seats := *session.Capacity - int(count)
		if seats > len(queued) {
			seats = len(queued)
		}
		for ; seats > 0; seats-- {
			_, events, err := s.waitlists.PromoteNext(ctx, tx, session)
			if err != nil {
				return err
			}
			recorded = append(recorded, events...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("promote after capacity raise: %w", err)
	}

	if s.movements != nil {
		for _, event := range recorded {
			s.movements.Emit(event)
		}
	}
	return nil
}

func (s *sessionService) Cancel(ctx context.Context, id string) (*models.SessionInstance, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionCompleted {
		return nil, ErrSessionCompleted
	}

	// Existing bookings are not mutated; they simply stop being valid for
	// check-in once the session is cancelled.
	if err := s.sessions.UpdateStatus(ctx, id, models.SessionCancelled); err != nil {
		return nil, fmt.Errorf("cancel session: %w", err)
	}
	session.Status = models.SessionCancelled

	s.invalidateListings(ctx)
	s.log.Info("session cancelled", zap.String("session_id", id))
	return session, nil
}

func (s *sessionService) Complete(ctx context.Context, id string) (*models.SessionInstance, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionScheduled {
		return nil, ErrSessionNotScheduled
	}

	if err := s.sessions.UpdateStatus(ctx, id, models.SessionCompleted); err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}
	session.Status = models.SessionCompleted

	s.invalidateListings(ctx)
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*models.SessionInstance, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *sessionService) List(ctx context.Context, filter repository.SessionFilter) ([]models.SessionInstance, int64, error) {
	if filter.Status == "" {
		filter.Status = models.SessionScheduled
	}
	return s.sessions.List(ctx, filter)
}

func (s *sessionService) ListAvailable(ctx context.Context, filter repository.SessionFilter) ([]AvailableSession, error) {
	filter.Status = models.SessionScheduled
	// Exclude started and full sessions in the query itself, so pagination
	// happens over the bookable set and pages come back full.
	now := time.Now()
	filter.StartsAfter = &now
	filter.HasVacancy = true

	key := availableCacheKey(filter)
	if s.cache != nil {
		var cached []AvailableSession
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	sessions, _, err := s.sessions.ListPublic(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}
	counts, err := s.bookings.CountActiveBySessions(ctx, ids)
	if err != nil {
		return nil, err
	}

	available := make([]AvailableSession, 0, len(sessions))
	for _, session := range sessions {
		if !session.StartTime.After(now) {
			continue
		}
		if session.Capacity == nil {
			available = append(available, AvailableSession{SessionInstance: session})
			continue
		}
		spots := *session.Capacity - int(counts[session.ID])
		if spots <= 0 {
			continue
		}
		available = append(available, AvailableSession{SessionInstance: session, SpotsAvailable: &spots})
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, available)
	}
	return available, nil
}

func (s *sessionService) checkOverlap(ctx context.Context, locationID string, start, end time.Time, excludeID string) error {
	_, err := s.sessions.FindOverlapping(ctx, locationID, start, end, excludeID)
	if err == nil {
		return ErrSchedulingConflict
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (s *sessionService) invalidateListings(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidatePrefix(ctx, availableCachePrefix)
	}
}

func availableCacheKey(filter repository.SessionFilter) string {
	date := ""
	if filter.Date != nil {
		date = filter.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("%s%s:%s:%s:%d:%d",
		availableCachePrefix, date, filter.Category, filter.LocationID, filter.Page, filter.Limit)
}
