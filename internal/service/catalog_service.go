package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/moveos/scheduling-service/internal/models"
	"github.com/moveos/scheduling-service/internal/repository"
	"gorm.io/gorm"
)

// UpdateSessionTypeInput carries a partial update; nil fields are untouched.
type UpdateSessionTypeInput struct {
	Name            *string
	Category        *string
	DurationMinutes *int
	MaxCapacity     *int
	Difficulty      *models.Difficulty
}

type UpdateLocationInput struct {
	Name     *string
	Address  *string
	Capacity *int
	Timezone *string
}

type CatalogService interface {
	CreateSessionType(ctx context.Context, st *models.SessionType) error
	UpdateSessionType(ctx context.Context, id string, in UpdateSessionTypeInput) (*models.SessionType, error)
	DeactivateSessionType(ctx context.Context, id string) error
	ListSessionTypes(ctx context.Context) ([]models.SessionType, error)
	// ResolveSessionType fails with ErrSessionTypeNotFound when the id is
	// absent, inactive, or owned by another tenant.
	ResolveSessionType(ctx context.Context, id string) (*models.SessionType, error)

	CreateLocation(ctx context.Context, l *models.Location) error
	UpdateLocation(ctx context.Context, id string, in UpdateLocationInput) (*models.Location, error)
	DeactivateLocation(ctx context.Context, id string) error
	ListLocations(ctx context.Context) ([]models.Location, error)
	ListLocationsPublic(ctx context.Context) ([]models.Location, error)
	ResolveLocation(ctx context.Context, id string) (*models.Location, error)
}

type catalogService struct {
	sessionTypes repository.SessionTypeRepository
	locations    repository.LocationRepository
}

func NewCatalogService(sessionTypes repository.SessionTypeRepository, locations repository.LocationRepository) CatalogService {
	return &catalogService{sessionTypes: sessionTypes, locations: locations}
}

func (s *catalogService) CreateSessionType(ctx context.Context, st *models.SessionType) error {
	if _, err := s.sessionTypes.FindByName(ctx, st.Name, ""); err == nil {
		return ErrDuplicateName
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	st.Active = true
	if err := s.sessionTypes.Create(ctx, st); err != nil {
		return fmt.Errorf("create session type: %w", err)
	}
	return nil
}

func (s *catalogService) UpdateSessionType(ctx context.Context, id string, in UpdateSessionTypeInput) (*models.SessionType, error) {
	st, err := s.sessionTypes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionTypeNotFound
		}
		return nil, err
	}

	if in.Name != nil && *in.Name != st.Name {
		if _, err := s.sessionTypes.FindByName(ctx, *in.Name, id); err == nil {
			return nil, ErrDuplicateName
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		st.Name = *in.Name
	}
	if in.Category != nil {
		st.Category = *in.Category
	}
	if in.DurationMinutes != nil {
		st.DurationMinutes = *in.DurationMinutes
	}
	if in.MaxCapacity != nil {
		st.MaxCapacity = in.MaxCapacity
	}
	if in.Difficulty != nil {
		st.Difficulty = *in.Difficulty
	}

	if err := s.sessionTypes.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("update session type: %w", err)
	}
	return st, nil
}

func (s *catalogService) DeactivateSessionType(ctx context.Context, id string) error {
	st, err := s.sessionTypes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionTypeNotFound
		}
		return err
	}
	// Soft delete: historical sessions keep referencing the template.
	st.Active = false
	return s.sessionTypes.Save(ctx, st)
}

func (s *catalogService) ListSessionTypes(ctx context.Context) ([]models.SessionType, error) {
	return s.sessionTypes.ListActive(ctx)
}

func (s *catalogService) ResolveSessionType(ctx context.Context, id string) (*models.SessionType, error) {
	st, err := s.sessionTypes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionTypeNotFound
		}
		return nil, err
	}
	if !st.Active {
		return nil, ErrSessionTypeNotFound
	}
	return st, nil
}

func (s *catalogService) CreateLocation(ctx context.Context, l *models.Location) error {
	if _, err := s.locations.FindByName(ctx, l.Name, ""); err == nil {
		return ErrDuplicateName
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	l.Active = true
	if err := s.locations.Create(ctx, l); err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

func (s *catalogService) UpdateLocation(ctx context.Context, id string, in UpdateLocationInput) (*models.Location, error) {
	l, err := s.locations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}

	if in.Name != nil && *in.Name != l.Name {
		if _, err := s.locations.FindByName(ctx, *in.Name, id); err == nil {
			return nil, ErrDuplicateName
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		l.Name = *in.Name
	}
	if in.Address != nil {
		l.Address = *in.Address
	}
	if in.Capacity != nil {
		l.Capacity = *in.Capacity
	}
	if in.Timezone != nil {
		l.Timezone = *in.Timezone
	}

	if err := s.locations.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return l, nil
}

func (s *catalogService) DeactivateLocation(ctx context.Context, id string) error {
	l, err := s.locations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLocationNotFound
		}
		return err
	}
	l.Active = false
	return s.locations.Save(ctx, l)
}

func (s *catalogService) ListLocations(ctx context.Context) ([]models.Location, error) {
	return s.locations.ListActive(ctx)
}

func (s *catalogService) ListLocationsPublic(ctx context.Context) ([]models.Location, error) {
	return s.locations.ListActivePublic(ctx)
}

func (s *catalogService) ResolveLocation(ctx context.Context, id string) (*models.Location, error) {
	l, err := s.locations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	if !l.Active {
		return nil, ErrLocationNotFound
	}
	return l, nil
}
