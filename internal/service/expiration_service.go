package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dormops/dormd/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpirationService reconciles room state with assignment windows once the
// windows have closed. Expiration is always recomputed from the stored
// dates and the reference date; nothing about it is cached between runs,
// so the sweep can be re-run for the same date with no second effect.
type ExpirationService struct {
	assignments AssignmentStore
	roomState   *RoomService
	sink        NotificationSink
	logger      *zap.Logger
}

func NewExpirationService(
	assignments AssignmentStore,
	roomState *RoomService,
	sink NotificationSink,
	logger *zap.Logger,
) *ExpirationService {
	return &ExpirationService{
		assignments: assignments,
		roomState:   roomState,
		sink:        sink,
		logger:      logger,
	}
}

// RunSweep processes every assignment that ended strictly before today and
// whose room is still marked occupied. Each one is handled independently:
// a failure on one is logged and the rest still get reconciled.
func (s *ExpirationService) RunSweep(ctx context.Context, today time.Time) error {
	logger := s.logger.With(
		zap.String("sweep_id", uuid.NewString()),
		zap.Time("today", model.Day(today)),
	)
	logger.Info("Starting expiration sweep")

	expired, err := s.assignments.ExpiredOccupied(ctx, today)
	if err != nil {
		return fmt.Errorf("find expired assignments: %w", err)
	}

	failed := 0
	for _, assignment := range expired {
		if err := s.reconcile(ctx, logger, assignment, today); err != nil {
			failed++
			logger.Error("Failed to process expired assignment",
				zap.Int64("assignment_id", assignment.ID),
				zap.Int64("room_id", assignment.RoomID),
				zap.Error(err),
			)
		}
	}

	logger.Info("Expiration sweep finished",
		zap.Int("expired", len(expired)),
		zap.Int("failed", failed),
	)

	return nil
}

func (s *ExpirationService) reconcile(ctx context.Context, logger *zap.Logger, assignment *model.Assignment, today time.Time) error {
	// Notice first, and the flag persisted before the room is touched: a
	// rerun or a crash-and-retry must not notify the student again.
	if !assignment.ExpiryNotified {
		notify(ctx, s.sink, logger, assignment.StudentID,
			model.NotificationKindInfo,
			"Assignment expired",
			"Your housing period has come to its end.",
		)

		if err := s.assignments.MarkExpiryNotified(ctx, assignment.ID); err != nil {
			return err
		}
		assignment.ExpiryNotified = true

		logger.Info("Expiration notice sent",
			zap.Int64("assignment_id", assignment.ID),
			zap.Int64("student_id", assignment.StudentID),
		)
	}

	// The room is freed only when nobody else holds it: a newer assignment
	// whose window is still open (end date null or on/after today) means
	// the room now belongs to that assignment.
	active, err := s.assignments.HasActiveForRoom(ctx, assignment.RoomID, today)
	if err != nil {
		return err
	}

	if active {
		logger.Info("Room kept occupied, newer assignment holds it",
			zap.Int64("room_id", assignment.RoomID),
		)
		return nil
	}

	if err := s.roomState.MarkAvailable(ctx, assignment.RoomID); err != nil {
		return err
	}

	logger.Info("Room freed",
		zap.Int64("room_id", assignment.RoomID),
		zap.Int64("assignment_id", assignment.ID),
	)

	return nil
}
