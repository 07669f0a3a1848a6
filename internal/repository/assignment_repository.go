package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dormops/dormd/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssignmentRepository struct {
	pool *pgxpool.Pool
}

func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// CreateApproved performs the approval unit as one transaction: locks the
// room row, re-checks availability under the lock, inserts the assignment,
// flips the room to occupied and the request to approved. If two approvals
// race for the same room, the second one blocks on the lock and then fails
// with ErrRoomNotAvailable.
func (r *AssignmentRepository) CreateApproved(ctx context.Context, a *model.Assignment, requestID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var state model.RoomState
	err = tx.QueryRow(ctx, `SELECT state FROM rooms WHERE id = $1 FOR UPDATE`, a.RoomID).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrRoomNotFound
		}
		return fmt.Errorf("lock room: %w", err)
	}

	if state != model.RoomStateAvailable {
		return model.ErrRoomNotAvailable
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO assignments (student_id, room_id, start_date, end_date, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, a.StudentID, a.RoomID, a.StartDate, a.EndDate, a.Note).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}

	if _, err := setRoomState(ctx, tx, a.RoomID, model.RoomStateOccupied); err != nil {
		return fmt.Errorf("occupy room: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE housing_requests SET status = $1, updated_at = $2 WHERE id = $3
	`, model.RequestStatusApproved, time.Now(), requestID)
	if err != nil {
		return fmt.Errorf("approve request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrRequestNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// LatestByStudent returns the student's most recent assignment by start
// date over the whole history, active or not. Nil if the student was never
// assigned. Activity is the caller's check.
func (r *AssignmentRepository) LatestByStudent(ctx context.Context, studentID int64) (*model.Assignment, error) {
	query := `
		SELECT id, student_id, room_id, start_date, end_date, note, expiry_notified, created_at
		FROM assignments
		WHERE student_id = $1
		ORDER BY start_date DESC, id DESC
		LIMIT 1
	`

	var a model.Assignment
	err := r.pool.QueryRow(ctx, query, studentID).Scan(
		&a.ID,
		&a.StudentID,
		&a.RoomID,
		&a.StartDate,
		&a.EndDate,
		&a.Note,
		&a.ExpiryNotified,
		&a.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest assignment: %w", err)
	}

	return &a, nil
}

// Close sets the assignment's end date. A non-empty note replaces the
// stored one.
func (r *AssignmentRepository) Close(ctx context.Context, id int64, endDate time.Time, note string) error {
	query := `
		UPDATE assignments
		SET end_date = $1, note = COALESCE(NULLIF($2, ''), note)
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, endDate, note, id)
	if err != nil {
		return fmt.Errorf("close assignment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrNoActiveAssignment
	}

	return nil
}

// ExpiredOccupied finds assignments whose end date is strictly before the
// given date and whose room is still marked occupied, i.e. expirations the
// sweep has not reconciled yet. end_date = today stays out: the student
// may still use the room that day.
func (r *AssignmentRepository) ExpiredOccupied(ctx context.Context, today time.Time) ([]*model.Assignment, error) {
	query := `
		SELECT a.id, a.student_id, a.room_id, a.start_date, a.end_date, a.note, a.expiry_notified, a.created_at
		FROM assignments a
		JOIN rooms r ON r.id = a.room_id
		WHERE a.end_date IS NOT NULL
		  AND a.end_date < $1
		  AND r.state = $2
		ORDER BY a.end_date ASC, a.id ASC
	`

	rows, err := r.pool.Query(ctx, query, model.Day(today), model.RoomStateOccupied)
	if err != nil {
		return nil, fmt.Errorf("find expired occupied assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*model.Assignment
	for rows.Next() {
		var a model.Assignment
		err := rows.Scan(
			&a.ID,
			&a.StudentID,
			&a.RoomID,
			&a.StartDate,
			&a.EndDate,
			&a.Note,
			&a.ExpiryNotified,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}

	return assignments, nil
}

// HasActiveForRoom checks whether any assignment holds the room on the
// given date or keeps holding it into the future (end date null or on/after
// that date)
func (r *AssignmentRepository) HasActiveForRoom(ctx context.Context, roomID int64, today time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM assignments
			WHERE room_id = $1
			  AND (end_date IS NULL OR end_date >= $2)
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, roomID, model.Day(today)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active assignment for room: %w", err)
	}

	return exists, nil
}

// MarkExpiryNotified records that the expiration notice went out, so a
// later sweep run never re-sends it
func (r *AssignmentRepository) MarkExpiryNotified(ctx context.Context, id int64) error {
	query := `
		UPDATE assignments
		SET expiry_notified = TRUE
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark expiry notified: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("assignment not found")
	}

	return nil
}

// CountHousedStudents counts distinct students with an assignment active on
// the given date
func (r *AssignmentRepository) CountHousedStudents(ctx context.Context, today time.Time) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT student_id)
		FROM assignments
		WHERE start_date <= $1
		  AND (end_date IS NULL OR end_date >= $1)
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, model.Day(today)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count housed students: %w", err)
	}

	return count, nil
}
