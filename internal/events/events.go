package events

import (
	"encoding/json"
	"time"

	"github.com/example/storefront/internal/order"
	"github.com/google/uuid"
)

// Event types carried on the storefront topic.
const (
	TypePaymentConfirmed = "PaymentConfirmed"
	TypeContactReceived  = "ContactReceived"
	TypeContactReplied   = "ContactReplied"
)

// Envelope wraps an event payload for the wire.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// New builds an envelope around a payload.
func New(eventType string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       data,
	}, nil
}

// PaymentConfirmed is published once per order, after the verifier has
// claimed the pending row.
type PaymentConfirmed struct {
	OrderID   string       `json:"order_id"`
	Email     string       `json:"email"`
	Reference string       `json:"reference"`
	Total     float64      `json:"total"`
	Items     []order.Item `json:"items"`
	PaidAt    time.Time    `json:"paid_at"`
}

// ContactReceived is published when a support message is submitted.
type ContactReceived struct {
	MessageID string `json:"message_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
}

// ContactReplied is published when a reply lands on a thread.
type ContactReplied struct {
	MessageID  string `json:"message_id"`
	SenderRole string `json:"sender_role"`
	Email      string `json:"email"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}
