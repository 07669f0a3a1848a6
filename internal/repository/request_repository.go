package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dormops/dormd/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

// Create inserts a housing request
func (r *RequestRepository) Create(ctx context.Context, req *model.HousingRequest) error {
	query := `
		INSERT INTO housing_requests (student_id, status, motive)
		VALUES ($1, $2, $3)
		RETURNING id, submitted_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		req.StudentID,
		req.Status,
		req.Motive,
	).Scan(&req.ID, &req.SubmittedAt)

	if err != nil {
		return fmt.Errorf("create housing request: %w", err)
	}

	return nil
}

// GetByID fetches a request by ID, nil if the request does not exist
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*model.HousingRequest, error) {
	query := `
		SELECT id, student_id, status, motive, submitted_at, updated_at
		FROM housing_requests
		WHERE id = $1
	`

	var req model.HousingRequest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.StudentID,
		&req.Status,
		&req.Motive,
		&req.SubmittedAt,
		&req.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get housing request: %w", err)
	}

	return &req, nil
}

// HasPendingByStudent checks whether the student has a pending request
func (r *RequestRepository) HasPendingByStudent(ctx context.Context, studentID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM housing_requests
			WHERE student_id = $1 AND status = $2
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, studentID, model.RequestStatusPending).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending request: %w", err)
	}

	return exists, nil
}

// UpdateStatus updates a request's status. A non-empty motive replaces the
// stored one (used to record a rejection reason); empty keeps it.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, status, motive string) error {
	query := `
		UPDATE housing_requests
		SET status = $1, motive = COALESCE(NULLIF($2, ''), motive), updated_at = $3
		WHERE id = $4
	`

	now := time.Now()
	result, err := r.pool.Exec(ctx, query, status, motive, now, id)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrRequestNotFound
	}

	return nil
}

// ListPending lists pending requests, newest first
func (r *RequestRepository) ListPending(ctx context.Context) ([]*model.HousingRequest, error) {
	query := `
		SELECT id, student_id, status, motive, submitted_at, updated_at
		FROM housing_requests
		WHERE status = $1
		ORDER BY submitted_at DESC
	`

	rows, err := r.pool.Query(ctx, query, model.RequestStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// ListByStudent lists a student's requests, newest first
func (r *RequestRepository) ListByStudent(ctx context.Context, studentID int64) ([]*model.HousingRequest, error) {
	query := `
		SELECT id, student_id, status, motive, submitted_at, updated_at
		FROM housing_requests
		WHERE student_id = $1
		ORDER BY submitted_at DESC
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// CountPending counts requests still awaiting a decision
func (r *RequestRepository) CountPending(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM housing_requests
		WHERE status = $1
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, model.RequestStatusPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending requests: %w", err)
	}

	return count, nil
}

func scanRequests(rows pgx.Rows) ([]*model.HousingRequest, error) {
	var requests []*model.HousingRequest
	for rows.Next() {
		var req model.HousingRequest
		err := rows.Scan(
			&req.ID,
			&req.StudentID,
			&req.Status,
			&req.Motive,
			&req.SubmittedAt,
			&req.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan housing request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return requests, nil
}
