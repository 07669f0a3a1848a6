package repository

import (
	"context"
	"fmt"

	"github.com/dormops/dormd/internal/model"
	"github.com/dormops/dormd/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	pool *pgxpool.Pool
}

func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// Create inserts a new room, defaulting state to available
func (r *RoomRepository) Create(ctx context.Context, room *model.Room) error {
	if room.State == "" {
		room.State = model.RoomStateAvailable
	}

	query := `
		INSERT INTO rooms (number, type, capacity, state)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		room.Number,
		room.Type,
		room.Capacity,
		room.State,
	).Scan(&room.ID, &room.CreatedAt)

	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}

	return nil
}

// GetByID fetches a room by id, nil if the room does not exist
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	query := `
		SELECT id, number, type, capacity, state, created_at
		FROM rooms
		WHERE id = $1
	`

	var room model.Room
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.Number,
		&room.Type,
		&room.Capacity,
		&room.State,
		&room.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get room: %w", err)
	}

	return &room, nil
}

// SetState updates a room's availability state
func (r *RoomRepository) SetState(ctx context.Context, id int64, state model.RoomState) error {
	affected, err := setRoomState(ctx, r.pool, id, state)
	if err != nil {
		return fmt.Errorf("set room state: %w", err)
	}

	if affected == 0 {
		return model.ErrRoomNotFound
	}

	return nil
}

// setRoomState runs the state update on any querier, so the approval
// transaction can reuse the same statement
func setRoomState(ctx context.Context, q base.Querier, id int64, state model.RoomState) (int64, error) {
	tag, err := q.Exec(ctx, `UPDATE rooms SET state = $1 WHERE id = $2`, state, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListAvailable lists available rooms, optionally filtered by type
func (r *RoomRepository) ListAvailable(ctx context.Context, roomType string) ([]*model.Room, error) {
	query := `
		SELECT id, number, type, capacity, state, created_at
		FROM rooms
		WHERE state = $1
	`
	args := []any{model.RoomStateAvailable}

	if roomType != "" {
		query += ` AND type = $2`
		args = append(args, roomType)
	}
	query += ` ORDER BY number ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list available rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*model.Room
	for rows.Next() {
		var room model.Room
		err := rows.Scan(
			&room.ID,
			&room.Number,
			&room.Type,
			&room.Capacity,
			&room.State,
			&room.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, &room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}

	return rooms, nil
}

// CountAvailable counts rooms currently marked available
func (r *RoomRepository) CountAvailable(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM rooms
		WHERE state = $1
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, model.RoomStateAvailable).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count available rooms: %w", err)
	}

	return count, nil
}
