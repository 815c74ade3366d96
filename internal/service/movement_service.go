package service

import (
	"context"
	"fmt"

	"github.com/moveos/scheduling-service/internal/models"
	"github.com/moveos/scheduling-service/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventPublisher is the outbound movement stream. The core guarantees
// emission only; delivery belongs to the consumers.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// MovementService appends the audit trail. Record runs inside the caller's
// transaction; Emit streams an already-committed event and must only be
// called after the transaction commits.
type MovementService interface {
	Record(ctx context.Context, tx *gorm.DB, event *models.MovementEvent) error
	Emit(event *models.MovementEvent)
	ListByMember(ctx context.Context, memberID string, limit int) ([]models.MovementEvent, error)
}

type movementService struct {
	repo      repository.MovementRepository
	publisher EventPublisher
	log       *zap.Logger
}

func NewMovementService(repo repository.MovementRepository, publisher EventPublisher, log *zap.Logger) MovementService {
	if log == nil {
		log = zap.NewNop()
	}
	return &movementService{repo: repo, publisher: publisher, log: log}
}

func (s *movementService) Record(ctx context.Context, tx *gorm.DB, event *models.MovementEvent) error {
	if err := s.repo.Create(ctx, tx, event); err != nil {
		return fmt.Errorf("record movement event: %w", err)
	}
	return nil
}

func (s *movementService) Emit(event *models.MovementEvent) {
	if s.publisher == nil || event == nil {
		return
	}
	routingKey := "movement." + string(event.Type)
	if err := s.publisher.Publish(routingKey, event); err != nil {
		// The row is already committed; a publish failure loses the stream
		// copy only, never the audit record.
		s.log.Warn("movement event publish failed",
			zap.String("routing_key", routingKey),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

func (s *movementService) ListByMember(ctx context.Context, memberID string, limit int) ([]models.MovementEvent, error) {
	return s.repo.ListByMember(ctx, memberID, limit)
}
