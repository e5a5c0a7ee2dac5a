package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"ticketera/internal/models"
)

type CatalogRepository struct {
	DB *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

// ListActiveEvents: опубликованные события по дате начала.
func (r *CatalogRepository) ListActiveEvents(ctx context.Context) ([]*models.Event, error) {
	const q = `
		SELECT id, name, description, location, starts_at, active
		FROM events
		WHERE active = TRUE
		ORDER BY starts_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("events list: %w", err)
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.StartsAt, &e.Active); err != nil {
			return nil, fmt.Errorf("events scan: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	const q = `
		SELECT id, name, description, location, starts_at, active
		FROM events
		WHERE id = $1
	`
	var e models.Event
	err := r.DB.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.StartsAt, &e.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("event get: %w", err)
	}
	return &e, nil
}

// ListTicketTypes: активные типы билетов события, от дешёвых к дорогим.
func (r *CatalogRepository) ListTicketTypes(ctx context.Context, eventID string) ([]*models.TicketType, error) {
	const q = `
		SELECT id, event_id, name, description, price, color_hex, active
		FROM ticket_types
		WHERE event_id = $1 AND active = TRUE
		ORDER BY price ASC
	`
	rows, err := r.DB.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, fmt.Errorf("ticket types list: %w", err)
	}
	defer rows.Close()

	var out []*models.TicketType
	for rows.Next() {
		var t models.TicketType
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.Description, &t.Price, &t.ColorHex, &t.Active); err != nil {
			return nil, fmt.Errorf("ticket types scan: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	const q = `
		SELECT id, event_id, name, description, price, color_hex, active
		FROM ticket_types
		WHERE id = $1
	`
	var t models.TicketType
	err := r.DB.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.EventID, &t.Name, &t.Description, &t.Price, &t.ColorHex, &t.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ticket type get: %w", err)
	}
	return &t, nil
}
