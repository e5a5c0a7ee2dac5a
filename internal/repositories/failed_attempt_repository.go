package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"ticketera/internal/models"
)

type FailedAttemptRepository struct {
	DB *sql.DB
}

func NewFailedAttemptRepository(db *sql.DB) *FailedAttemptRepository {
	return &FailedAttemptRepository{DB: db}
}

// Create: append-only; the table is never read back by the service.
func (r *FailedAttemptRepository) Create(ctx context.Context, a *models.FailedAttempt) error {
	const q = `
		INSERT INTO failed_purchase_attempts (email, dni, reason, ip_address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := r.DB.QueryRowContext(ctx, q, a.Email, a.DNI, a.Reason, a.IPAddress).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("failed attempt insert: %w", err)
	}
	return nil
}
