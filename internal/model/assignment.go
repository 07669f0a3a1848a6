package model

import "time"

// Assignment ties a student to a room for a date window. EndDate nil means
// open-ended. "Expired" is always computed from the dates, never stored;
// ExpiryNotified only deduplicates the expiration notice.
type Assignment struct {
	ID             int64      `json:"id"`
	StudentID      int64      `json:"student_id"`
	RoomID         int64      `json:"room_id"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date"` // nil = open-ended
	Note           string     `json:"note"`
	ExpiryNotified bool       `json:"expiry_notified"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ActiveOn reports whether the assignment's window includes the given date.
// An assignment ending exactly on d is still active on d.
func (a *Assignment) ActiveOn(d time.Time) bool {
	day := Day(d)
	if Day(a.StartDate).After(day) {
		return false
	}
	return a.EndDate == nil || !Day(*a.EndDate).Before(day)
}

// ExpiredOn reports whether the assignment ended strictly before the given date.
func (a *Assignment) ExpiredOn(d time.Time) bool {
	return a.EndDate != nil && Day(*a.EndDate).Before(Day(d))
}
