package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/storefront/internal/contact"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/events"
)

// Sender is the slice of the email service the notifier needs.
type Sender interface {
	SendPaymentReceipt(to, orderID, reference string, total float64, items []email.OrderItem) error
	SendContactAlert(to, name, fromEmail, subject string) error
	SendReplyNotification(to, subject, replyBody string) error
}

// Handler turns storefront events into emails.
type Handler struct {
	sender       Sender
	supportInbox string
}

// NewHandler creates a new notification handler. supportInbox receives
// alerts for inbound contact messages.
func NewHandler(sender Sender, supportInbox string) *Handler {
	return &Handler{
		sender:       sender,
		supportInbox: supportInbox,
	}
}

// HandleEvent processes one event from the topic. Unknown types are
// ignored so new producers don't break the notifier.
func (h *Handler) HandleEvent(ctx context.Context, event events.Envelope) error {
	switch event.Type {
	case events.TypePaymentConfirmed:
		return h.handlePaymentConfirmed(event)
	case events.TypeContactReceived:
		return h.handleContactReceived(event)
	case events.TypeContactReplied:
		return h.handleContactReplied(event)
	}
	return nil
}

func (h *Handler) handlePaymentConfirmed(event events.Envelope) error {
	var e events.PaymentConfirmed
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal PaymentConfirmed event: %v", err)
		return err
	}

	log.Printf("[Notifier] Payment confirmed for order %s, emailing %s", e.OrderID, e.Email)

	emailItems := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		emailItems[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	if err := h.sender.SendPaymentReceipt(e.Email, e.OrderID, e.Reference, e.Total, emailItems); err != nil {
		log.Printf("[Notifier] Failed to send receipt to %s: %v", e.Email, err)
		return err
	}

	log.Printf("[Notifier] Payment receipt sent to %s for order %s", e.Email, e.OrderID)
	return nil
}

func (h *Handler) handleContactReceived(event events.Envelope) error {
	var e events.ContactReceived
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal ContactReceived event: %v", err)
		return err
	}

	if h.supportInbox == "" {
		return nil
	}
	if err := h.sender.SendContactAlert(h.supportInbox, e.Name, e.Email, e.Subject); err != nil {
		log.Printf("[Notifier] Failed to alert support inbox: %v", err)
		return err
	}
	return nil
}

func (h *Handler) handleContactReplied(event events.Envelope) error {
	var e events.ContactReplied
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal ContactReplied event: %v", err)
		return err
	}

	// Only staff replies get pushed to the submitter; user replies already
	// show up in the back-office inbox.
	if e.SenderRole != contact.RoleAdmin {
		return nil
	}
	if err := h.sender.SendReplyNotification(e.Email, e.Subject, e.Body); err != nil {
		log.Printf("[Notifier] Failed to notify %s about reply: %v", e.Email, err)
		return err
	}
	return nil
}
