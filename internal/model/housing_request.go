package model

import "time"

// HousingRequest represents a student's request for a dormitory room
type HousingRequest struct {
	ID          int64      `json:"id"`
	StudentID   int64      `json:"student_id"`
	Status      string     `json:"status"` // 'pending', 'approved', 'rejected'
	Motive      string     `json:"motive"`
	SubmittedAt time.Time  `json:"submitted_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// Request status constants
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// IsPending checks if request is pending
func (r *HousingRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// IsApproved checks if request is approved
func (r *HousingRequest) IsApproved() bool {
	return r.Status == RequestStatusApproved
}

// IsRejected checks if request is rejected
func (r *HousingRequest) IsRejected() bool {
	return r.Status == RequestStatusRejected
}
