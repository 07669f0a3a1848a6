package service

import (
	"context"
	"time"

	"github.com/dormops/dormd/internal/model"
)

// Store interfaces are declared here, on the consumer side, and satisfied
// by the pgx repositories. Tests substitute in-memory implementations.

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
}

type RoomStore interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id int64) (*model.Room, error)
	SetState(ctx context.Context, id int64, state model.RoomState) error
	ListAvailable(ctx context.Context, roomType string) ([]*model.Room, error)
	CountAvailable(ctx context.Context) (int64, error)
}

type RequestStore interface {
	Create(ctx context.Context, req *model.HousingRequest) error
	GetByID(ctx context.Context, id int64) (*model.HousingRequest, error)
	HasPendingByStudent(ctx context.Context, studentID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status, motive string) error
	ListPending(ctx context.Context) ([]*model.HousingRequest, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*model.HousingRequest, error)
	CountPending(ctx context.Context) (int64, error)
}

type AssignmentStore interface {
	// CreateApproved must be one atomic unit: insert the assignment, flip
	// the room to occupied and the request to approved, with the room's
	// availability re-checked under a lock so concurrent approvals of the
	// same room cannot both succeed.
	CreateApproved(ctx context.Context, a *model.Assignment, requestID int64) error
	LatestByStudent(ctx context.Context, studentID int64) (*model.Assignment, error)
	Close(ctx context.Context, id int64, endDate time.Time, note string) error
	ExpiredOccupied(ctx context.Context, today time.Time) ([]*model.Assignment, error)
	HasActiveForRoom(ctx context.Context, roomID int64, today time.Time) (bool, error)
	MarkExpiryNotified(ctx context.Context, id int64) error
	CountHousedStudents(ctx context.Context, today time.Time) (int64, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID int64) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, recipientID int64) error
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
}

// NotificationSink delivers one notification to one user. Engine
// operations treat it as fire-and-forget: a failed send is logged, never
// rolled back on.
type NotificationSink interface {
	Send(ctx context.Context, recipientID int64, kind, title, body string) error
}
