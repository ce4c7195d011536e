package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/storefront/internal/order"
)

// PostgresOrderStore implements OrderStore on PostgreSQL.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

const orderColumns = `id, COALESCE(user_id, ''), email, total, status,
	ship_name, ship_address, ship_city, ship_state, ship_zip, ship_country,
	COALESCE(payment_ref, ''), paid_at, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*order.Order, error) {
	var o order.Order
	var paidAt sql.NullTime
	err := row.Scan(&o.ID, &o.UserID, &o.Email, &o.Total, &o.Status,
		&o.Shipping.Name, &o.Shipping.Address, &o.Shipping.City,
		&o.Shipping.State, &o.Shipping.Zip, &o.Shipping.Country,
		&o.PaymentRef, &paidAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		t := paidAt.Time
		o.PaidAt = &t
	}
	return &o, nil
}

func (s *PostgresOrderStore) CreateOrder(ctx context.Context, o *order.Order) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, email, total, status,
			ship_name, ship_address, ship_city, ship_state, ship_zip, ship_country,
			created_at, updated_at)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID, o.UserID, o.Email, o.Total, o.Status,
		o.Shipping.Name, o.Shipping.Address, o.Shipping.City,
		o.Shipping.State, o.Shipping.Zip, o.Shipping.Country,
		o.CreatedAt, o.UpdatedAt)
	return err
}

func (s *PostgresOrderStore) UpdateCheckoutFields(ctx context.Context, o *order.Order) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET email = $2, total = $3,
			ship_name = $4, ship_address = $5, ship_city = $6,
			ship_state = $7, ship_zip = $8, ship_country = $9,
			updated_at = now()
		 WHERE id = $1 AND status = 'pending'`,
		o.ID, o.Email, o.Total,
		o.Shipping.Name, o.Shipping.Address, o.Shipping.City,
		o.Shipping.State, o.Shipping.Zip, o.Shipping.Country)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return order.ErrOrderNotPending
	}
	return nil
}

func (s *PostgresOrderStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, order.ErrOrderNotFound
	}
	return o, err
}

func (s *PostgresOrderStore) GetOrderByPaymentRef(ctx context.Context, ref string) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_ref = $1`, ref)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, order.ErrOrderNotFound
	}
	return o, err
}

func (s *PostgresOrderStore) listOrders(ctx context.Context, query string, args ...any) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *PostgresOrderStore) ListOrdersByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return s.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *PostgresOrderStore) ListAllOrders(ctx context.Context) ([]order.Order, error) {
	return s.listOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (s *PostgresOrderStore) CreateItems(ctx context.Context, items []order.Item) error {
	for _, item := range items {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4)`,
			item.OrderID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresOrderStore) GetItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT oi.order_id, oi.product_id, COALESCE(p.name, ''), oi.quantity, oi.price
		 FROM order_items oi
		 LEFT JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var item order.Item
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresOrderStore) CountItems(ctx context.Context, orderID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_items WHERE order_id = $1`, orderID).Scan(&n)
	return n, err
}

func (s *PostgresOrderStore) SetPaymentRef(ctx context.Context, orderID, ref string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET payment_ref = $2, updated_at = now() WHERE id = $1`, orderID, ref)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// MarkPaid claims a pending order in a single conditional update. Two
// near-simultaneous verifications of the same reference race on this
// statement; exactly one sees RowsAffected == 1.
func (s *PostgresOrderStore) MarkPaid(ctx context.Context, orderID, ref string, paidAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = 'processing', payment_ref = $2, paid_at = $3, updated_at = now()
		 WHERE id = $1 AND status = 'pending'`,
		orderID, ref, paidAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *PostgresOrderStore) UpdateStatus(ctx context.Context, orderID string, status order.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, orderID, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}
