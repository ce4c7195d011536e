package contact

import (
	"context"
	"log"
	"time"

	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/google/uuid"
)

// Store persists messages and reply threads. Satisfied by the PostgreSQL
// contact store.
type Store interface {
	CreateMessage(ctx context.Context, m *Message) error
	GetMessage(ctx context.Context, id string) (*Message, error)
	ListMessages(ctx context.Context) ([]Message, error)
	ListMessagesByUser(ctx context.Context, userID string) ([]Message, error)
	UpdateMessageStatus(ctx context.Context, id string, status Status) error

	CreateReply(ctx context.Context, r *Reply) error
	// ListReplies returns a thread ordered by creation time ascending.
	ListReplies(ctx context.Context, messageID string) ([]Reply, error)
}

// Principal is who is acting on the thread. Guests have an empty UserID
// and are identified by the email they submitted with.
type Principal struct {
	UserID string
	Email  string
	Admin  bool
}

// Service implements the support thread: inbound messages plus threaded
// replies between a user and staff.
type Service struct {
	store     Store
	publisher kafka.Publisher
}

func NewService(store Store, publisher kafka.Publisher) *Service {
	return &Service{store: store, publisher: publisher}
}

// Submit stores an inbound message. The notification event is best-effort:
// the message is saved even if publishing fails.
func (s *Service) Submit(ctx context.Context, userID, name, email, subject, body string) (*Message, error) {
	if name == "" || email == "" || subject == "" || body == "" {
		return nil, ErrMissingFields
	}

	now := time.Now()
	m := &Message{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Email:     email,
		Subject:   subject,
		Body:      body,
		Status:    StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateMessage(ctx, m); err != nil {
		return nil, err
	}

	s.publish(ctx, m.ID, events.TypeContactReceived, events.ContactReceived{
		MessageID: m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
	})
	return m, nil
}

// canRead reports whether the principal may see a message.
func canRead(p Principal, m *Message) bool {
	if p.Admin {
		return true
	}
	if m.UserID != "" {
		return m.UserID == p.UserID
	}
	// Guest messages are readable by whoever holds the submitting email.
	return p.Email != "" && p.Email == m.Email
}

// Thread is a message with its ordered replies.
type Thread struct {
	Message Message `json:"message"`
	Replies []Reply `json:"replies"`
}

// GetThread returns a message and its replies, enforcing read permissions.
// An admin opening a new message marks it read.
func (s *Service) GetThread(ctx context.Context, p Principal, messageID string) (*Thread, error) {
	m, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !canRead(p, m) {
		return nil, ErrNotOwner
	}

	if p.Admin && m.Status == StatusNew {
		if err := s.store.UpdateMessageStatus(ctx, m.ID, StatusRead); err == nil {
			m.Status = StatusRead
		}
	}

	replies, err := s.store.ListReplies(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return &Thread{Message: *m, Replies: replies}, nil
}

// ListFor returns the messages a principal may see: everything for admins,
// their own for users.
func (s *Service) ListFor(ctx context.Context, p Principal) ([]Message, error) {
	if p.Admin {
		return s.store.ListMessages(ctx)
	}
	if p.UserID == "" {
		return nil, nil
	}
	return s.store.ListMessagesByUser(ctx, p.UserID)
}

// PostReply appends a reply to a thread. Owners reply as users, staff as
// admins; an admin reply flips the message to replied.
func (s *Service) PostReply(ctx context.Context, p Principal, messageID, body string) (*Reply, error) {
	if body == "" {
		return nil, ErrEmptyReply
	}

	m, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !canRead(p, m) {
		return nil, ErrNotOwner
	}

	role := RoleUser
	if p.Admin {
		role = RoleAdmin
	}
	r := &Reply{
		ID:         uuid.New().String(),
		MessageID:  m.ID,
		SenderRole: role,
		Body:       body,
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateReply(ctx, r); err != nil {
		return nil, err
	}

	if p.Admin && m.Status != StatusReplied {
		if err := s.store.UpdateMessageStatus(ctx, m.ID, StatusReplied); err != nil {
			log.Printf("[Contact] Failed to mark message %s replied: %v", m.ID, err)
		}
	}

	s.publish(ctx, m.ID, events.TypeContactReplied, events.ContactReplied{
		MessageID:  m.ID,
		SenderRole: role,
		Email:      m.Email,
		Subject:    m.Subject,
		Body:       body,
	})
	return r, nil
}

func (s *Service) publish(ctx context.Context, key, eventType string, payload any) {
	if s.publisher == nil {
		return
	}
	event, err := events.New(eventType, payload)
	if err != nil {
		log.Printf("[Contact] Failed to build %s event: %v", eventType, err)
		return
	}
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		log.Printf("[Contact] Failed to publish %s for message %s: %v", eventType, key, err)
	}
}
