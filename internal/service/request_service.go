package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dormops/dormd/internal/model"
	"go.uber.org/zap"
)

// RequestService manages the housing request lifecycle from submission to
// rejection. Approval lives in AssignmentService, where it is one unit
// with the room assignment.
type RequestService struct {
	users       UserStore
	requests    RequestStore
	assignments AssignmentStore
	sink        NotificationSink
	logger      *zap.Logger
	now         func() time.Time
}

func NewRequestService(
	users UserStore,
	requests RequestStore,
	assignments AssignmentStore,
	sink NotificationSink,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		users:       users,
		requests:    requests,
		assignments: assignments,
		sink:        sink,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit creates a pending housing request for the student. A student who
// already occupies a room is refused and additionally told so directly:
// that failure is user-caused and actionable, unlike a bad id.
func (s *RequestService) Submit(ctx context.Context, studentID int64, motive string) (*model.HousingRequest, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil || student.Role != model.RoleStudent {
		return nil, model.ErrStudentNotFound
	}

	current, err := currentAssignment(ctx, s.assignments, studentID, s.now())
	if err != nil {
		return nil, err
	}
	if current != nil {
		notify(ctx, s.sink, s.logger, studentID,
			model.NotificationKindError,
			"Request not possible",
			"You already occupy a room. You cannot submit a new housing request.",
		)
		return nil, model.ErrStudentAlreadyHoused
	}

	hasPending, err := s.requests.HasPendingByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("check pending request: %w", err)
	}
	if hasPending {
		return nil, model.ErrDuplicatePendingRequest
	}

	req := &model.HousingRequest{
		StudentID: studentID,
		Status:    model.RequestStatusPending,
		Motive:    motive,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("Housing request submitted",
		zap.Int64("request_id", req.ID),
		zap.Int64("student_id", studentID),
	)

	notifyRole(ctx, s.users, s.sink, s.logger,
		model.RoleManager,
		model.NotificationKindMessage,
		"New housing request",
		"A new housing request has been submitted by "+student.FullName(),
	)

	return req, nil
}

// Reject turns the request down. A non-empty reason is stored in place of
// the motive.
func (s *RequestService) Reject(ctx context.Context, requestID int64, reason string) (*model.HousingRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, model.ErrRequestNotFound
	}

	if err := s.requests.UpdateStatus(ctx, requestID, model.RequestStatusRejected, reason); err != nil {
		return nil, err
	}

	req.Status = model.RequestStatusRejected
	if reason != "" {
		req.Motive = reason
	}

	s.logger.Info("Housing request rejected",
		zap.Int64("request_id", requestID),
		zap.Int64("student_id", req.StudentID),
	)

	notify(ctx, s.sink, s.logger, req.StudentID,
		model.NotificationKindWarning,
		"Request rejected",
		"Your housing request has been rejected.",
	)

	return req, nil
}

// PendingRequests lists requests awaiting a decision, newest first
func (s *RequestService) PendingRequests(ctx context.Context) ([]*model.HousingRequest, error) {
	return s.requests.ListPending(ctx)
}

// RequestsByStudent lists a student's requests, newest first
func (s *RequestService) RequestsByStudent(ctx context.Context, studentID int64) ([]*model.HousingRequest, error) {
	return s.requests.ListByStudent(ctx, studentID)
}

// CountPending counts requests awaiting a decision
func (s *RequestService) CountPending(ctx context.Context) (int64, error) {
	return s.requests.CountPending(ctx)
}
