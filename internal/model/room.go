package model

import "time"

type RoomState string

const (
	RoomStateAvailable   RoomState = "available"
	RoomStateOccupied    RoomState = "occupied"
	RoomStateMaintenance RoomState = "maintenance"
)

type Room struct {
	ID        int64     `json:"id"`
	Number    string    `json:"number"`
	Type      string    `json:"type"`
	Capacity  int       `json:"capacity"`
	State     RoomState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAvailable checks if the room can accept a new assignment
func (r *Room) IsAvailable() bool {
	return r.State == RoomStateAvailable
}
