package service

import (
	"context"
	"testing"

	"github.com/moveos/scheduling-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCreateSessionType_Success(t *testing.T) {
	svc := NewCatalogService(&mockSessionTypeRepo{}, &mockLocationRepo{})

	st := &models.SessionType{Name: "Strength Training", DurationMinutes: 45}
	err := svc.CreateSessionType(testCtx(), st)

	assert.NoError(t, err)
	assert.True(t, st.Active)
}

func TestCreateSessionType_DuplicateName(t *testing.T) {
	types := &mockSessionTypeRepo{
		findByNameFn: func(ctx context.Context, name, excludeID string) (*models.SessionType, error) {
			return &models.SessionType{ID: "type-existing", Name: name}, nil
		},
	}
	svc := NewCatalogService(types, &mockLocationRepo{})

	err := svc.CreateSessionType(testCtx(), &models.SessionType{Name: "Strength Training", DurationMinutes: 45})

	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestUpdateSessionType_RenameToTakenName(t *testing.T) {
	types := &mockSessionTypeRepo{
		findByIDFn: func(ctx context.Context, id string) (*models.SessionType, error) {
			return &models.SessionType{ID: id, Name: "Pilates", Active: true}, nil
		},
		findByNameFn: func(ctx context.Context, name, excludeID string) (*models.SessionType, error) {
			return &models.SessionType{ID: "type-other", Name: name}, nil
		},
	}
	svc := NewCatalogService(types, &mockLocationRepo{})

	name := "Vinyasa Yoga"
	_, err := svc.UpdateSessionType(testCtx(), "type-1", UpdateSessionTypeInput{Name: &name})

	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestUpdateSessionType_PartialUpdate(t *testing.T) {
	var saved *models.SessionType
	types := &mockSessionTypeRepo{
		findByIDFn: func(ctx context.Context, id string) (*models.SessionType, error) {
			return &models.SessionType{ID: id, Name: "Pilates", DurationMinutes: 50, Active: true}, nil
		},
		saveFn: func(ctx context.Context, st *models.SessionType) error {
			saved = st
			return nil
		},
	}
	svc := NewCatalogService(types, &mockLocationRepo{})

	duration := 55
	updated, err := svc.UpdateSessionType(testCtx(), "type-1", UpdateSessionTypeInput{DurationMinutes: &duration})

	assert.NoError(t, err)
	assert.Equal(t, 55, updated.DurationMinutes)
	// Untouched fields survive.
	assert.Equal(t, "Pilates", saved.Name)
}

func TestDeactivateSessionType_SoftDeletes(t *testing.T) {
	var saved *models.SessionType
	types := &mockSessionTypeRepo{
		findByIDFn: func(ctx context.Context, id string) (*models.SessionType, error) {
			return &models.SessionType{ID: id, Name: "Pilates", Active: true}, nil
		},
		saveFn: func(ctx context.Context, st *models.SessionType) error {
			saved = st
			return nil
		},
	}
	svc := NewCatalogService(types, &mockLocationRepo{})

	err := svc.DeactivateSessionType(testCtx(), "type-1")

	assert.NoError(t, err)
	assert.False(t, saved.Active)
}

func TestResolveSessionType_Inactive(t *testing.T) {
	types := &mockSessionTypeRepo{
		findByIDFn: func(ctx context.Context, id string) (*models.SessionType, error) {
			return &models.SessionType{ID: id, Name: "Retired", Active: false}, nil
		},
	}
	svc := NewCatalogService(types, &mockLocationRepo{})

	_, err := svc.ResolveSessionType(testCtx(), "type-1")

	assert.ErrorIs(t, err, ErrSessionTypeNotFound)
}

func TestResolveSessionType_Missing(t *testing.T) {
	svc := NewCatalogService(&mockSessionTypeRepo{}, &mockLocationRepo{})

	_, err := svc.ResolveSessionType(testCtx(), "nope")

	assert.ErrorIs(t, err, ErrSessionTypeNotFound)
}

func TestCreateLocation_DuplicateName(t *testing.T) {
	locations := &mockLocationRepo{
		findByNameFn: func(ctx context.Context, name, excludeID string) (*models.Location, error) {
			return &models.Location{ID: "location-existing", Name: name}, nil
		},
	}
	svc := NewCatalogService(&mockSessionTypeRepo{}, locations)

	err := svc.CreateLocation(testCtx(), &models.Location{Name: "Main Studio"})

	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestResolveLocation_Inactive(t *testing.T) {
	locations := &mockLocationRepo{
		findByIDFn: func(ctx context.Context, id string) (*models.Location, error) {
			return &models.Location{ID: id, Name: "Closed Annex", Active: false}, nil
		},
	}
	svc := NewCatalogService(&mockSessionTypeRepo{}, locations)

	_, err := svc.ResolveLocation(testCtx(), "location-1")

	assert.ErrorIs(t, err, ErrLocationNotFound)
}
