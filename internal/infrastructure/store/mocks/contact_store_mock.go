package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/storefront/internal/contact"
)

// MockContactStore is an in-memory contact.Store for testing
type MockContactStore struct {
	mu       sync.RWMutex
	messages map[string]contact.Message
	replies  map[string][]contact.Reply
}

// NewMockContactStore creates a new MockContactStore
func NewMockContactStore() *MockContactStore {
	return &MockContactStore{
		messages: make(map[string]contact.Message),
		replies:  make(map[string][]contact.Reply),
	}
}

func (m *MockContactStore) CreateMessage(ctx context.Context, msg *contact.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.ID] = *msg
	return nil
}

func (m *MockContactStore) GetMessage(ctx context.Context, id string) (*contact.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msg, ok := m.messages[id]
	if !ok {
		return nil, contact.ErrMessageNotFound
	}
	return &msg, nil
}

func (m *MockContactStore) ListMessages(ctx context.Context) ([]contact.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]contact.Message, 0, len(m.messages))
	for _, msg := range m.messages {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockContactStore) ListMessagesByUser(ctx context.Context, userID string) ([]contact.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []contact.Message
	for _, msg := range m.messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockContactStore) UpdateMessageStatus(ctx context.Context, id string, status contact.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.messages[id]
	if !ok {
		return contact.ErrMessageNotFound
	}
	msg.Status = status
	m.messages[id] = msg
	return nil
}

func (m *MockContactStore) CreateReply(ctx context.Context, r *contact.Reply) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[r.MessageID] = append(m.replies[r.MessageID], *r)
	return nil
}

func (m *MockContactStore) ListReplies(ctx context.Context, messageID string) ([]contact.Reply, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]contact.Reply(nil), m.replies[messageID]...), nil
}
