package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dormops/dormd/internal/model"
)

// memStore is a shared in-memory backing for all store fakes. One mutex
// guards everything, which is what makes the fake CreateApproved an atomic
// compare-and-set like the real transaction.
type memStore struct {
	mu            sync.Mutex
	users         map[int64]*model.User
	rooms         map[int64]*model.Room
	requests      map[int64]*model.HousingRequest
	assignments   map[int64]*model.Assignment
	notifications []*model.Notification
	nextID        int64

	// failure injection
	markNotifiedErr map[int64]error
}

func newMemStore() *memStore {
	return &memStore{
		users:           make(map[int64]*model.User),
		rooms:           make(map[int64]*model.Room),
		requests:        make(map[int64]*model.HousingRequest),
		assignments:     make(map[int64]*model.Assignment),
		markNotifiedErr: make(map[int64]error),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addUser(role model.Role) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{ID: s.id(), Role: role, FirstName: "Test", LastName: "User", CreatedAt: time.Now()}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addRoom(state model.RoomState) *model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &model.Room{ID: s.id(), Number: "R", Capacity: 1, State: state, CreatedAt: time.Now()}
	s.rooms[r.ID] = r
	return r
}

func (s *memStore) addRequest(studentID int64, status string) *model.HousingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &model.HousingRequest{ID: s.id(), StudentID: studentID, Status: status, SubmittedAt: time.Now()}
	s.requests[r.ID] = r
	return r
}

func (s *memStore) addAssignment(studentID, roomID int64, start time.Time, end *time.Time, notified bool) *model.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &model.Assignment{
		ID:             s.id(),
		StudentID:      studentID,
		RoomID:         roomID,
		StartDate:      model.Day(start),
		ExpiryNotified: notified,
		CreatedAt:      time.Now(),
	}
	if end != nil {
		d := model.Day(*end)
		a.EndDate = &d
	}
	s.assignments[a.ID] = a
	return a
}

func (s *memStore) roomState(id int64) model.RoomState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[id].State
}

// memUsers implements UserStore

type memUsers struct{ *memStore }

func (m memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m memUsers) ListByRole(_ context.Context, role model.Role) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// memRooms implements RoomStore

type memRooms struct{ *memStore }

func (m memRooms) Create(_ context.Context, room *model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room.State == "" {
		room.State = model.RoomStateAvailable
	}
	room.ID = m.id()
	room.CreatedAt = time.Now()
	cp := *room
	m.rooms[room.ID] = &cp
	return nil
}

func (m memRooms) GetByID(_ context.Context, id int64) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m memRooms) SetState(_ context.Context, id int64, state model.RoomState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return model.ErrRoomNotFound
	}
	r.State = state
	return nil
}

func (m memRooms) ListAvailable(_ context.Context, roomType string) ([]*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Room
	for _, r := range m.rooms {
		if r.State != model.RoomStateAvailable {
			continue
		}
		if roomType != "" && r.Type != roomType {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memRooms) CountAvailable(_ context.Context) (int64, error) {
	rooms, _ := m.ListAvailable(context.Background(), "")
	return int64(len(rooms)), nil
}

// memRequests implements RequestStore

type memRequests struct{ *memStore }

func (m memRequests) Create(_ context.Context, req *model.HousingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = m.id()
	req.SubmittedAt = time.Now()
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m memRequests) GetByID(_ context.Context, id int64) (*model.HousingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m memRequests) HasPendingByStudent(_ context.Context, studentID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.StudentID == studentID && r.Status == model.RequestStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (m memRequests) UpdateStatus(_ context.Context, id int64, status, motive string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return model.ErrRequestNotFound
	}
	r.Status = status
	if motive != "" {
		r.Motive = motive
	}
	now := time.Now()
	r.UpdatedAt = &now
	return nil
}

func (m memRequests) ListPending(_ context.Context) ([]*model.HousingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.HousingRequest
	for _, r := range m.requests {
		if r.Status == model.RequestStatusPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (m memRequests) ListByStudent(_ context.Context, studentID int64) ([]*model.HousingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.HousingRequest
	for _, r := range m.requests {
		if r.StudentID == studentID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (m memRequests) CountPending(_ context.Context) (int64, error) {
	pending, _ := m.ListPending(context.Background())
	return int64(len(pending)), nil
}

// memAssignments implements AssignmentStore

type memAssignments struct{ *memStore }

func (m memAssignments) CreateApproved(_ context.Context, a *model.Assignment, requestID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[a.RoomID]
	if !ok {
		return model.ErrRoomNotFound
	}
	if room.State != model.RoomStateAvailable {
		return model.ErrRoomNotAvailable
	}

	req, ok := m.requests[requestID]
	if !ok {
		return model.ErrRequestNotFound
	}

	a.ID = m.id()
	a.CreatedAt = time.Now()
	cp := *a
	m.assignments[a.ID] = &cp

	room.State = model.RoomStateOccupied
	req.Status = model.RequestStatusApproved
	now := time.Now()
	req.UpdatedAt = &now

	return nil
}

func (m memAssignments) LatestByStudent(_ context.Context, studentID int64) (*model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Assignment
	for _, a := range m.assignments {
		if a.StudentID != studentID {
			continue
		}
		if latest == nil || a.StartDate.After(latest.StartDate) ||
			(a.StartDate.Equal(latest.StartDate) && a.ID > latest.ID) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m memAssignments) Close(_ context.Context, id int64, endDate time.Time, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return model.ErrNoActiveAssignment
	}
	d := model.Day(endDate)
	a.EndDate = &d
	if note != "" {
		a.Note = note
	}
	return nil
}

func (m memAssignments) ExpiredOccupied(_ context.Context, today time.Time) ([]*model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Assignment
	for _, a := range m.assignments {
		room, ok := m.rooms[a.RoomID]
		if !ok || room.State != model.RoomStateOccupied {
			continue
		}
		if a.ExpiredOn(today) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memAssignments) HasActiveForRoom(_ context.Context, roomID int64, today time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := model.Day(today)
	for _, a := range m.assignments {
		if a.RoomID != roomID {
			continue
		}
		if a.EndDate == nil || !model.Day(*a.EndDate).Before(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m memAssignments) MarkExpiryNotified(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.markNotifiedErr[id]; err != nil {
		return err
	}
	a, ok := m.assignments[id]
	if !ok {
		return model.ErrNoActiveAssignment
	}
	a.ExpiryNotified = true
	return nil
}

func (m memAssignments) CountHousedStudents(_ context.Context, today time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[int64]bool)
	for _, a := range m.assignments {
		if a.ActiveOn(today) {
			seen[a.StudentID] = true
		}
	}
	return int64(len(seen)), nil
}

// memNotifications implements NotificationStore

type memNotifications struct{ *memStore }

func (m memNotifications) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = m.id()
	n.CreatedAt = time.Now()
	cp := *n
	m.notifications = append(m.notifications, &cp)
	return nil
}

func (m memNotifications) ListByRecipient(_ context.Context, recipientID int64) ([]*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Notification
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memNotifications) MarkRead(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return errors.New("notification not found")
}

func (m memNotifications) MarkAllRead(_ context.Context, recipientID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

func (m memNotifications) CountUnread(_ context.Context, recipientID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

// recordingSink captures sent notifications for assertions

type sentNote struct {
	recipient int64
	kind      string
	title     string
	body      string
}

type recordingSink struct {
	mu   sync.Mutex
	sent []sentNote
	err  error
}

func (s *recordingSink) Send(_ context.Context, recipientID int64, kind, title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentNote{recipient: recipientID, kind: kind, title: title, body: body})
	return nil
}

func (s *recordingSink) countFor(recipient int64, title string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.sent {
		if n.recipient == recipient && n.title == title {
			count++
		}
	}
	return count
}

func (s *recordingSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// test helpers

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func fixedNow(s string) func() time.Time {
	t := day(s)
	return func() time.Time { return t }
}
