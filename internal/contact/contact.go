package contact

import (
	"errors"
	"time"
)

type Status string

const (
	StatusNew     Status = "new"
	StatusRead    Status = "read"
	StatusReplied Status = "replied"
)

// Sender roles on a reply thread.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotOwner        = errors.New("not the owner of this message")
	ErrMissingFields   = errors.New("name, email, subject and body are required")
	ErrEmptyReply      = errors.New("reply body is required")
)

// Message is an inbound support request. UserID is empty when submitted by
// a guest. AdminResponse is a legacy single-reply field kept for older
// messages; new replies live on the thread.
type Message struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id,omitempty"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	Status        Status    `json:"status"`
	AdminResponse string    `json:"admin_response,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Reply is one turn in a message's thread, ordered by creation time.
type Reply struct {
	ID         string    `json:"id"`
	MessageID  string    `json:"message_id"`
	SenderRole string    `json:"sender_role"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}
