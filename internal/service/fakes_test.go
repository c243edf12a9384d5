package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"skillconnect/internal/models"
	"skillconnect/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStoreDown = errors.New("store down")

type emitted struct {
	userID    string
	eventType string
	payload   interface{}
}

// recordingEmitter records every emit and runs check at emit time, so tests
// can assert the record was already persisted when it went out.
type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
	check  func(e emitted)
}

func (r *recordingEmitter) EmitToUser(userID, eventType string, payload interface{}) {
	e := emitted{userID: userID, eventType: eventType, payload: payload}
	if r.check != nil {
		r.check(e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) byType(eventType string) []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []emitted
	for _, e := range r.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type memNotifications struct {
	mu        sync.Mutex
	records   map[primitive.ObjectID]*models.NotificationRecord
	err       error
	lastLimit int64
}

func newMemNotifications() *memNotifications {
	return &memNotifications{records: make(map[primitive.ObjectID]*models.NotificationRecord)}
}

func (m *memNotifications) Insert(_ context.Context, n *models.NotificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	cp := *n
	m.records[n.ID] = &cp
	return nil
}

func (m *memNotifications) has(id primitive.ObjectID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[id]
	return ok
}

func (m *memNotifications) ListByRecipient(_ context.Context, recipientID string, limit int64) ([]models.NotificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	out := []models.NotificationRecord{}
	for _, n := range m.records {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memNotifications) MarkRead(_ context.Context, id primitive.ObjectID, recipientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.records[id]
	if !ok || n.RecipientID != recipientID {
		return store.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (m *memNotifications) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.records {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (m *memNotifications) Delete(_ context.Context, id primitive.ObjectID, recipientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.records[id]
	if !ok || n.RecipientID != recipientID {
		return store.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

type memMessages struct {
	mu       sync.Mutex
	messages []*models.ChatMessage
	err      error
}

func (m *memMessages) Insert(_ context.Context, msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	msg.ID = primitive.NewObjectID()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memMessages) Thread(_ context.Context, a, b string, limit int64, _ time.Time) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ChatMessage{}
	for _, msg := range m.messages {
		if (msg.SenderID == a && msg.RecipientID == b) || (msg.SenderID == b && msg.RecipientID == a) {
			out = append(out, *msg)
		}
	}
	if int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out, nil
}

func (m *memMessages) MarkSeen(_ context.Context, recipientID, senderID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, msg := range m.messages {
		if msg.SenderID == senderID && msg.RecipientID == recipientID && !msg.Seen {
			msg.Seen = true
			count++
		}
	}
	return count, nil
}

func (m *memMessages) has(id primitive.ObjectID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ID == id {
			return true
		}
	}
	return false
}

type memJobs struct {
	mu           sync.Mutex
	jobs         map[primitive.ObjectID]*models.Job
	applications map[string]bool
	interests    map[string]bool
	err          error
}

func newMemJobs() *memJobs {
	return &memJobs{
		jobs:         make(map[primitive.ObjectID]*models.Job),
		applications: make(map[string]bool),
		interests:    make(map[string]bool),
	}
}

func (m *memJobs) Insert(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	job.ID = primitive.NewObjectID()
	m.jobs[job.ID] = job
	return nil
}

func (m *memJobs) Get(_ context.Context, id primitive.ObjectID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return job, nil
}

func (m *memJobs) InsertApplication(_ context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	key := app.JobID.Hex() + "/" + app.ApplicantID
	if m.applications[key] {
		return store.ErrDuplicate
	}
	m.applications[key] = true
	app.ID = primitive.NewObjectID()
	return nil
}

func (m *memJobs) InsertInterest(_ context.Context, in *models.Interest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := in.JobID.Hex() + "/" + in.UserID
	if m.interests[key] {
		return store.ErrDuplicate
	}
	m.interests[key] = true
	return nil
}

type memUsers struct {
	mu      sync.Mutex
	names   map[string]string
	follows map[string][]string // followee -> followers
}

func newMemUsers(names map[string]string) *memUsers {
	return &memUsers{names: names, follows: make(map[string][]string)}
}

func (m *memUsers) Summary(_ context.Context, userID string) (*models.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.names[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &models.UserSummary{ID: userID, Name: name}, nil
}

func (m *memUsers) Follow(_ context.Context, followerID, followeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.follows[followeeID] {
		if f == followerID {
			return store.ErrDuplicate
		}
	}
	m.follows[followeeID] = append(m.follows[followeeID], followerID)
	return nil
}

func (m *memUsers) Unfollow(_ context.Context, followerID, followeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.follows[followeeID]
	for i, f := range list {
		if f == followerID {
			m.follows[followeeID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memUsers) Followers(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.follows[userID]...), nil
}
