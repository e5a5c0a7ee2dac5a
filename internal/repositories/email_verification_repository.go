package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ticketera/internal/models"
)

type EmailVerificationRepository struct {
	DB *sql.DB
}

func NewEmailVerificationRepository(db *sql.DB) *EmailVerificationRepository {
	return &EmailVerificationRepository{DB: db}
}

// Upsert: one row per email; a new code overwrites the previous one and
// resets attempts/verified.
func (r *EmailVerificationRepository) Upsert(ctx context.Context, v *models.EmailVerification) error {
	const q = `
		INSERT INTO email_verifications (email, code, verified, attempts, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code,
		    verified = EXCLUDED.verified,
		    attempts = EXCLUDED.attempts,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
	`
	if _, err := r.DB.ExecContext(ctx, q, v.Email, v.Code, v.Verified, v.Attempts, v.CreatedAt, v.ExpiresAt); err != nil {
		return fmt.Errorf("email_verification upsert: %w", err)
	}
	return nil
}

func (r *EmailVerificationRepository) GetByEmail(ctx context.Context, email string) (*models.EmailVerification, error) {
	const q = `
		SELECT email, code, verified, attempts, created_at, expires_at
		FROM email_verifications
		WHERE email = $1
	`
	var v models.EmailVerification
	err := r.DB.QueryRowContext(ctx, q, email).Scan(&v.Email, &v.Code, &v.Verified, &v.Attempts, &v.CreatedAt, &v.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("email_verification get: %w", err)
	}
	return &v, nil
}

// IncrementAttempts adds one attempt atomically in the database.
func (r *EmailVerificationRepository) IncrementAttempts(ctx context.Context, email string) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE email_verifications SET attempts = attempts + 1 WHERE email = $1`, email); err != nil {
		return fmt.Errorf("email_verification increment attempts: %w", err)
	}
	return nil
}

func (r *EmailVerificationRepository) MarkVerified(ctx context.Context, email string) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE email_verifications SET verified = TRUE WHERE email = $1`, email); err != nil {
		return fmt.Errorf("email_verification mark verified: %w", err)
	}
	return nil
}

func (r *EmailVerificationRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM email_verifications WHERE email = $1`, email); err != nil {
		return fmt.Errorf("email_verification delete: %w", err)
	}
	return nil
}

// DeleteExpired drops unverified codes past their expiry; verified rows stay
// as audit markers.
func (r *EmailVerificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM email_verifications WHERE verified = FALSE AND expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("email_verification delete expired: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
