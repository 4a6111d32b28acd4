package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fuscashop/ordernotify/internal/dispatch"
	"github.com/fuscashop/ordernotify/internal/domain"
	"github.com/fuscashop/ordernotify/internal/media"
	apperrors "github.com/fuscashop/ordernotify/pkg/errors"
)

type sentMessage struct {
	Address string
	Payload dispatch.Payload
}

// recordingDispatcher completes every job immediately, failing the ones
// whose text or media path is listed in fail.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[string]bool
}

func (d *recordingDispatcher) Enqueue(address string, payload dispatch.Payload) <-chan error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentMessage{Address: address, Payload: payload})

	done := make(chan error, 1)
	key := payload.Text
	if payload.Media != nil {
		key = payload.Media.Path
	}
	if d.fail[key] {
		done <- errors.New("send failed")
	} else {
		done <- nil
	}
	return done
}

func (d *recordingDispatcher) messages() []sentMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]sentMessage(nil), d.sent...)
}

// channelClient is a ready dispatch.Client recording every send
type channelClient struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (c *channelClient) IsReady() bool { return true }

func (c *channelClient) Send(_ context.Context, address string, payload dispatch.Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentMessage{Address: address, Payload: payload})
	return nil
}

func (c *channelClient) messages() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentMessage(nil), c.sent...)
}

type memoryQuestions struct {
	mu        sync.Mutex
	questions map[uuid.UUID]*domain.Question
	err       error
}

func newMemoryQuestions(questions ...*domain.Question) *memoryQuestions {
	m := &memoryQuestions{questions: make(map[uuid.UUID]*domain.Question)}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, q := range questions {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		q.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		m.questions[q.ID] = q
	}
	return m
}

func (m *memoryQuestions) sorted(activeOnly bool) []*domain.Question {
	out := make([]*domain.Question, 0, len(m.questions))
	for _, q := range m.questions {
		if activeOnly && !q.Active {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *memoryQuestions) GetActive(_ context.Context) ([]*domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(true), nil
}

func (m *memoryQuestions) List(_ context.Context) ([]*domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(false), nil
}

func (m *memoryQuestions) GetByID(_ context.Context, id uuid.UUID) (*domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "question", ID: id.String()}
	}
	copied := *q
	return &copied, nil
}

func (m *memoryQuestions) Create(_ context.Context, q *domain.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	m.questions[q.ID] = q
	return nil
}

func (m *memoryQuestions) Update(_ context.Context, q *domain.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[q.ID]; !ok {
		return &apperrors.ErrNotFound{Resource: "question", ID: q.ID.String()}
	}
	q.UpdatedAt = time.Now()
	m.questions[q.ID] = q
	return nil
}

func (m *memoryQuestions) Deactivate(_ context.Context, id uuid.UUID) (*domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "question", ID: id.String()}
	}
	q.Active = false
	return q, nil
}

func (m *memoryQuestions) Stats(_ context.Context) (*domain.QuestionStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := domain.ComputeQuestionStats(m.sorted(false))
	return &stats, nil
}

type memoryLogs struct {
	mu   sync.Mutex
	logs []*domain.NotificationLog
}

func (m *memoryLogs) Create(_ context.Context, log *domain.NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *memoryLogs) ListByOrder(_ context.Context, orderID string) ([]*domain.NotificationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.NotificationLog
	for _, l := range m.logs {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryLogs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

// fakeLibrary reports the listed paths as existing files
type fakeLibrary struct {
	files map[string]bool
}

func (l *fakeLibrary) Exists(path string) bool { return l.files[path] }

func (l *fakeLibrary) Resolve(path string) string { return "/media/" + path }

func (l *fakeLibrary) List(kind domain.ResponseKind) ([]media.File, error) {
	var out []media.File
	for path := range l.files {
		out = append(out, media.File{Name: path, Kind: kind, RelativePath: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (l *fakeLibrary) ListAll() (map[domain.ResponseKind][]media.File, error) {
	all := make(map[domain.ResponseKind][]media.File)
	for _, kind := range domain.MediaKinds {
		files, err := l.List(kind)
		if err != nil {
			return nil, err
		}
		all[kind] = files
	}
	return all, nil
}
