package email

import (
	"fmt"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendPaymentReceipt sends the post-payment receipt for an order.
func (s *Service) SendPaymentReceipt(to, orderID, reference string, total float64, items []OrderItem) error {
	shortID := orderID
	if len(orderID) > 8 {
		shortID = orderID[:8]
	}
	subject := fmt.Sprintf("Payment received for order %s", shortID)
	body := BuildPaymentReceiptBody(orderID, reference, total, items)
	return s.send(to, subject, body)
}

// SendContactAlert notifies the support inbox about a new message.
func (s *Service) SendContactAlert(to, name, fromEmail, subject string) error {
	body := BuildContactAlertBody(name, fromEmail, subject)
	return s.send(to, "New support message: "+subject, body)
}

// SendReplyNotification tells a submitter that staff answered their message.
func (s *Service) SendReplyNotification(to, subject, replyBody string) error {
	body := BuildReplyNotificationBody(subject, replyBody)
	return s.send(to, "Re: "+subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
