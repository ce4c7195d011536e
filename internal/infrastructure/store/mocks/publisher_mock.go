package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/events"
)

// MockPublisher records published events for assertions
type MockPublisher struct {
	mu         sync.Mutex
	Published  []PublishedEvent
	PublishErr error
}

// PublishedEvent records parameters passed to Publish
type PublishedEvent struct {
	Key   string
	Event events.Envelope
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, key string, event events.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Published = append(m.Published, PublishedEvent{Key: key, Event: event})
	return nil
}

// EventTypes returns the types of all published events in order
func (m *MockPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make([]string, 0, len(m.Published))
	for _, p := range m.Published {
		types = append(types, p.Event.Type)
	}
	return types
}
