package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ticketera/internal/db"
	"ticketera/internal/models"
)

type OrderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

const orderColumns = `id, event_id, full_name, dni, email, phone, voucher_url, payment_reference,
	payment_status, validation_status, total_amount, total_tickets, created_at, reviewed_at, reviewed_by`

// Create: шапка заказа и строки в одной транзакции, либо всё, либо ничего.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("order create: begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertOrder(ctx, tx, o); err != nil {
		return err
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := insertOrderItem(ctx, tx, &o.Items[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("order create: commit: %w", err)
	}
	return nil
}

func insertOrder(ctx context.Context, conn db.Conn, o *models.Order) error {
	const q = `
		INSERT INTO orders (id, event_id, full_name, dni, email, phone, voucher_url, payment_reference,
			payment_status, validation_status, total_amount, total_tickets)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`
	if err := conn.QueryRowContext(ctx, q,
		o.ID, o.EventID, o.FullName, o.DNI, o.Email, o.Phone, o.VoucherURL, o.PaymentReference,
		o.PaymentStatus, o.ValidationStatus, o.TotalAmount, o.TotalTickets,
	).Scan(&o.CreatedAt); err != nil {
		return fmt.Errorf("order insert: %w", err)
	}
	return nil
}

func insertOrderItem(ctx context.Context, conn db.Conn, it *models.OrderItem) error {
	const q = `
		INSERT INTO order_items (order_id, ticket_type_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := conn.QueryRowContext(ctx, q, it.OrderID, it.TicketTypeID, it.Quantity, it.UnitPrice).Scan(&it.ID); err != nil {
		return fmt.Errorf("order item insert: %w", err)
	}
	return nil
}

// HasPendingByEmail: есть ли у email заказ в статусе pending.
func (r *OrderRepository) HasPendingByEmail(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM orders WHERE email = $1 AND validation_status = $2)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, q, email, models.ValidationPending).Scan(&exists); err != nil {
		return false, fmt.Errorf("pending order by email: %w", err)
	}
	return exists, nil
}

func (r *OrderRepository) HasPendingByDNI(ctx context.Context, dni string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM orders WHERE dni = $1 AND validation_status = $2)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, q, dni, models.ValidationPending).Scan(&exists); err != nil {
		return false, fmt.Errorf("pending order by dni: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o          models.Order
		reviewedAt sql.NullTime
		reviewedBy sql.NullString
	)
	if err := row.Scan(
		&o.ID, &o.EventID, &o.FullName, &o.DNI, &o.Email, &o.Phone, &o.VoucherURL, &o.PaymentReference,
		&o.PaymentStatus, &o.ValidationStatus, &o.TotalAmount, &o.TotalTickets, &o.CreatedAt,
		&reviewedAt, &reviewedBy,
	); err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		o.ReviewedAt = &reviewedAt.Time
	}
	if reviewedBy.Valid {
		o.ReviewedBy = &reviewedBy.String
	}
	return &o, nil
}

// GetByID: заказ вместе со строками; nil, nil если не найден.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.DB.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("order get: %w", err)
	}
	items, err := r.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepository) ListItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	const q = `
		SELECT id, order_id, ticket_type_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("order items list: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.TicketTypeID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("order items scan: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List: заказы по статусу проверки, новые сверху. Пустой status: все.
func (r *OrderRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders
		WHERE ($1 = '' OR validation_status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, q, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order list: %w", err)
	}
	defer rows.Close()

	var out []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("order list scan: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateValidationStatus: условное обновление from -> to. false, если заказа
// нет или он уже не в статусе from.
func (r *OrderRepository) UpdateValidationStatus(ctx context.Context, id, from, to, reviewer string, at time.Time) (bool, error) {
	const q = `
		UPDATE orders
		SET validation_status = $1, reviewed_by = $2, reviewed_at = $3
		WHERE id = $4 AND validation_status = $5
	`
	res, err := r.DB.ExecContext(ctx, q, to, reviewer, at, id, from)
	if err != nil {
		return false, fmt.Errorf("order update validation status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("order update validation status: rows: %w", err)
	}
	return affected == 1, nil
}
