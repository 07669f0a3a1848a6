package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dormops/dormd/internal/model"
	"go.uber.org/zap"
)

// AssignmentService is the ledger of room assignments. It is the only
// place that creates or terminates assignments, and with that the only
// place a room legitimately moves between available and occupied.
type AssignmentService struct {
	users       UserStore
	rooms       RoomStore
	requests    RequestStore
	assignments AssignmentStore
	roomState   *RoomService
	sink        NotificationSink
	logger      *zap.Logger
	now         func() time.Time
}

func NewAssignmentService(
	users UserStore,
	rooms RoomStore,
	requests RequestStore,
	assignments AssignmentStore,
	roomState *RoomService,
	sink NotificationSink,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		users:       users,
		rooms:       rooms,
		requests:    requests,
		assignments: assignments,
		roomState:   roomState,
		sink:        sink,
		logger:      logger,
		now:         time.Now,
	}
}

// ApproveAndAssign approves the request and assigns the room as one
// logical operation: the assignment record, the room flip to occupied and
// the request flip to approved commit together or not at all. Start date
// defaults to today.
func (s *AssignmentService) ApproveAndAssign(ctx context.Context, requestID, roomID int64, startDate, endDate *time.Time, note string) (*model.Assignment, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, model.ErrRequestNotFound
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, model.ErrRoomNotFound
	}
	if !room.IsAvailable() {
		return nil, model.ErrRoomNotAvailable
	}

	start := model.Day(s.now())
	if startDate != nil {
		start = model.Day(*startDate)
	}

	var end *time.Time
	if endDate != nil {
		d := model.Day(*endDate)
		end = &d
	}

	assignment := &model.Assignment{
		StudentID: req.StudentID,
		RoomID:    roomID,
		StartDate: start,
		EndDate:   end,
		Note:      note,
	}

	// The store re-checks availability under a lock: if two approvals race
	// for this room, exactly one comes back without ErrRoomNotAvailable.
	if err := s.assignments.CreateApproved(ctx, assignment, requestID); err != nil {
		return nil, err
	}

	s.logger.Info("Room assigned",
		zap.Int64("assignment_id", assignment.ID),
		zap.Int64("request_id", requestID),
		zap.Int64("student_id", req.StudentID),
		zap.Int64("room_id", roomID),
		zap.Time("start_date", start),
	)

	// Two separate student notifications: the request decision and the
	// assignment itself are distinct user-facing facts.
	notify(ctx, s.sink, s.logger, req.StudentID,
		model.NotificationKindSuccess,
		"Request accepted",
		"Your housing request has been accepted.",
	)

	window := "from " + start.Format("2006-01-02")
	if end != nil {
		window += " to " + end.Format("2006-01-02")
	}
	notify(ctx, s.sink, s.logger, req.StudentID,
		model.NotificationKindSuccess,
		"New assignment",
		fmt.Sprintf("You have been assigned room %s %s.", room.Number, window),
	)

	studentName := fmt.Sprintf("student #%d", req.StudentID)
	if student, err := s.users.GetByID(ctx, req.StudentID); err == nil && student != nil {
		studentName = student.FullName()
	}
	notifyRole(ctx, s.users, s.sink, s.logger,
		model.RoleAdmin,
		model.NotificationKindInfo,
		"New assignment recorded",
		fmt.Sprintf("Room %s has been assigned to %s.", room.Number, studentName),
	)

	return assignment, nil
}

// TerminateEarly closes the student's current assignment today and frees
// the room right away. Unlike the sweep's conditional release, this free
// is unconditional: an explicit early departure empties the room now.
func (s *AssignmentService) TerminateEarly(ctx context.Context, studentID int64, note string) (*model.Assignment, error) {
	assignment, err := currentAssignment(ctx, s.assignments, studentID, s.now())
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, model.ErrNoActiveAssignment
	}

	today := model.Day(s.now())
	if err := s.assignments.Close(ctx, assignment.ID, today, note); err != nil {
		return nil, err
	}

	assignment.EndDate = &today
	if note != "" {
		assignment.Note = note
	}

	if err := s.roomState.MarkAvailable(ctx, assignment.RoomID); err != nil {
		return nil, fmt.Errorf("free room: %w", err)
	}

	s.logger.Info("Assignment terminated early",
		zap.Int64("assignment_id", assignment.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("room_id", assignment.RoomID),
	)

	notify(ctx, s.sink, s.logger, studentID,
		model.NotificationKindInfo,
		"Assignment ended",
		"Your housing assignment has been terminated as of today.",
	)

	return assignment, nil
}

// CurrentAssignment returns the student's current assignment per the
// shared resolution rule, nil if none is active.
func (s *AssignmentService) CurrentAssignment(ctx context.Context, studentID int64) (*model.Assignment, error) {
	return currentAssignment(ctx, s.assignments, studentID, s.now())
}

// CountHousedStudents counts students with an assignment active today
func (s *AssignmentService) CountHousedStudents(ctx context.Context) (int64, error) {
	return s.assignments.CountHousedStudents(ctx, s.now())
}
