package store

import (
	"context"
	"database/sql"

	"github.com/example/storefront/internal/contact"
)

// PostgresContactStore implements ContactStore on PostgreSQL.
type PostgresContactStore struct {
	db *sql.DB
}

func NewPostgresContactStore(db *sql.DB) *PostgresContactStore {
	return &PostgresContactStore{db: db}
}

const messageColumns = `id, COALESCE(user_id, ''), name, email, subject, body, status, admin_response, created_at, updated_at`

func scanMessage(row interface{ Scan(...any) error }) (*contact.Message, error) {
	var m contact.Message
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Email, &m.Subject, &m.Body,
		&m.Status, &m.AdminResponse, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PostgresContactStore) CreateMessage(ctx context.Context, m *contact.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, user_id, name, email, subject, body, status, created_at, updated_at)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.UserID, m.Name, m.Email, m.Subject, m.Body, m.Status, m.CreatedAt, m.UpdatedAt)
	return err
}

func (s *PostgresContactStore) GetMessage(ctx context.Context, id string) (*contact.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM contact_messages WHERE id = $1`, id)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, contact.ErrMessageNotFound
	}
	return m, err
}

func (s *PostgresContactStore) listMessages(ctx context.Context, query string, args ...any) ([]contact.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []contact.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func (s *PostgresContactStore) ListMessages(ctx context.Context) ([]contact.Message, error) {
	return s.listMessages(ctx,
		`SELECT `+messageColumns+` FROM contact_messages ORDER BY created_at DESC`)
}

func (s *PostgresContactStore) ListMessagesByUser(ctx context.Context, userID string) ([]contact.Message, error) {
	return s.listMessages(ctx,
		`SELECT `+messageColumns+` FROM contact_messages WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *PostgresContactStore) UpdateMessageStatus(ctx context.Context, id string, status contact.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contact_messages SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return contact.ErrMessageNotFound
	}
	return nil
}

func (s *PostgresContactStore) CreateReply(ctx context.Context, r *contact.Reply) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_replies (id, message_id, sender_role, body, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.MessageID, r.SenderRole, r.Body, r.CreatedAt)
	return err
}

func (s *PostgresContactStore) ListReplies(ctx context.Context, messageID string) ([]contact.Reply, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, message_id, sender_role, body, created_at
		 FROM contact_replies WHERE message_id = $1 ORDER BY created_at ASC`, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replies []contact.Reply
	for rows.Next() {
		var r contact.Reply
		if err := rows.Scan(&r.ID, &r.MessageID, &r.SenderRole, &r.Body, &r.CreatedAt); err != nil {
			return nil, err
		}
		replies = append(replies, r)
	}
	return replies, rows.Err()
}
