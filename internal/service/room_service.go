package service

import (
	"context"

	"github.com/dormops/dormd/internal/model"
	"go.uber.org/zap"
)

// RoomService tracks room availability. It only performs the reads and
// writes; whether a transition is warranted is the caller's decision
// (assignment ledger or expiration sweep), never decided here.
type RoomService struct {
	rooms  RoomStore
	logger *zap.Logger
}

func NewRoomService(rooms RoomStore, logger *zap.Logger) *RoomService {
	return &RoomService{
		rooms:  rooms,
		logger: logger,
	}
}

// MarkOccupied flips the room to occupied
func (s *RoomService) MarkOccupied(ctx context.Context, roomID int64) error {
	return s.setState(ctx, roomID, model.RoomStateOccupied)
}

// MarkAvailable flips the room back to available
func (s *RoomService) MarkAvailable(ctx context.Context, roomID int64) error {
	return s.setState(ctx, roomID, model.RoomStateAvailable)
}

func (s *RoomService) setState(ctx context.Context, roomID int64, state model.RoomState) error {
	if err := s.rooms.SetState(ctx, roomID, state); err != nil {
		return err
	}

	s.logger.Info("Room state changed",
		zap.Int64("room_id", roomID),
		zap.String("state", string(state)),
	)

	return nil
}

// IsAvailable reports whether the room can take a new assignment
func (s *RoomService) IsAvailable(ctx context.Context, roomID int64) (bool, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return false, err
	}
	if room == nil {
		return false, model.ErrRoomNotFound
	}

	return room.IsAvailable(), nil
}

// AddRoom registers a new room in the catalog, defaulting to available
func (s *RoomService) AddRoom(ctx context.Context, room *model.Room) error {
	if err := s.rooms.Create(ctx, room); err != nil {
		return err
	}

	s.logger.Info("Room added",
		zap.Int64("room_id", room.ID),
		zap.String("number", room.Number),
		zap.String("state", string(room.State)),
	)

	return nil
}

// AvailableRooms lists available rooms, optionally filtered by type
func (s *RoomService) AvailableRooms(ctx context.Context, roomType string) ([]*model.Room, error) {
	return s.rooms.ListAvailable(ctx, roomType)
}

// CountAvailable counts rooms currently available
func (s *RoomService) CountAvailable(ctx context.Context) (int64, error) {
	return s.rooms.CountAvailable(ctx)
}
