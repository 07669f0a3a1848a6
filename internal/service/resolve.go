package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dormops/dormd/internal/model"
)

// currentAssignment resolves a student's current assignment: the most
// recent one by start date over the whole history, reported only while its
// window is still open (end date null, or on/after the reference date).
// A future start date does not hide it: an assignment is visible to the
// student as soon as it is recorded.
//
// Because the most-recent pick ignores activity, a student whose newest
// assignment already ended resolves to none even if an older one is still
// open-ended. Kept as is; see DESIGN.md.
func currentAssignment(ctx context.Context, store AssignmentStore, studentID int64, today time.Time) (*model.Assignment, error) {
	a, err := store.LatestByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("resolve current assignment: %w", err)
	}

	if a == nil || a.ExpiredOn(today) {
		return nil, nil
	}

	return a, nil
}
