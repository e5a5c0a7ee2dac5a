package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"ticketera/internal/models"
	"ticketera/internal/validation"
)

var (
	ErrCodeInvalid     = errors.New("code invalid")
	ErrCodeExpired     = errors.New("code expired")
	ErrTooManyAttempts = errors.New("too many failed attempts, request a new code")
	ErrDelivery        = errors.New("code delivery failed")
)

const (
	codeLength             = 6
	defaultVerificationTTL = 15 * time.Minute
	defaultMaxAttempts     = 3
)

// VerificationStore: persistence of email verification records, keyed by email.
type VerificationStore interface {
	Upsert(ctx context.Context, v *models.EmailVerification) error
	GetByEmail(ctx context.Context, email string) (*models.EmailVerification, error)
	IncrementAttempts(ctx context.Context, email string) error
	MarkVerified(ctx context.Context, email string) error
	Delete(ctx context.Context, email string) error
}

// CodeSender delivers a code to an address. Only the transport response is
// known; delivery itself is not confirmed.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string) error
}

// OTPService: NONE -> ISSUED -> VERIFIED | EXPIRED | LOCKED, per email.
type OTPService struct {
	Repo        VerificationStore
	Sender      CodeSender
	CodeTTL     time.Duration
	MaxAttempts int

	now     func() time.Time
	newCode func() (string, error)
}

func NewOTPService(repo VerificationStore, sender CodeSender, ttl time.Duration, maxAttempts int) *OTPService {
	if ttl <= 0 {
		ttl = defaultVerificationTTL
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &OTPService{
		Repo:        repo,
		Sender:      sender,
		CodeTTL:     ttl,
		MaxAttempts: maxAttempts,
		now:         time.Now,
		newCode:     GenerateCode,
	}
}

// GenerateCode: 6 digits in 100000..999999 from crypto/rand.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// SanitizeCode keeps digits only and truncates to 6 characters.
func SanitizeCode(s string) string {
	d := validation.DigitsOnly(s)
	if len(d) > codeLength {
		d = d[:codeLength]
	}
	return d
}

// IssueCode overwrites any previous record for the email and mails the new
// code. A failed dispatch leaves the stored code valid and returns ErrDelivery.
func (s *OTPService) IssueCode(ctx context.Context, email string) error {
	code, err := s.newCode()
	if err != nil {
		return err
	}
	now := s.now()
	rec := &models.EmailVerification{
		Email:     email,
		Code:      code,
		Verified:  false,
		Attempts:  0,
		CreatedAt: now,
		ExpiresAt: now.Add(s.CodeTTL),
	}
	if err := s.Repo.Upsert(ctx, rec); err != nil {
		return err
	}

	if err := s.Sender.SendCode(ctx, email, code); err != nil {
		log.Printf("[otp][issue] delivery failed email=%s err=%v", email, err)
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	log.Printf("[otp][issue] sent email=%s expires_at=%s", email, rec.ExpiresAt.Format(time.RFC3339))
	return nil
}

// CheckCode compares an already sanitized code against the stored one.
// Returns nil on success, ErrCodeInvalid, ErrCodeExpired, ErrTooManyAttempts
// or a storage error.
func (s *OTPService) CheckCode(ctx context.Context, email, code string) error {
	rec, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	// lockout is checked before the comparison, so even the right code is refused
	if rec != nil && rec.Attempts >= s.MaxAttempts {
		if err := s.Repo.Delete(ctx, email); err != nil {
			return err
		}
		log.Printf("[otp][check] locked out email=%s", email)
		return ErrTooManyAttempts
	}

	if rec == nil || rec.Code != code {
		if rec != nil {
			if err := s.Repo.IncrementAttempts(ctx, email); err != nil {
				return err
			}
		}
		return ErrCodeInvalid
	}

	if rec.IsExpired(s.now()) {
		if err := s.Repo.Delete(ctx, email); err != nil {
			return err
		}
		return ErrCodeExpired
	}

	if err := s.Repo.MarkVerified(ctx, email); err != nil {
		return err
	}
	log.Printf("[otp][check] verified email=%s", email)
	return nil
}
