package services

import (
	"context"
	"log"

	"ticketera/internal/models"
)

type FailedAttemptStore interface {
	Create(ctx context.Context, a *models.FailedAttempt) error
}

// AuditLogger writes rejected attempts. Best-effort: errors are logged and dropped.
type AuditLogger struct {
	Repo FailedAttemptStore
}

func NewAuditLogger(repo FailedAttemptStore) *AuditLogger {
	return &AuditLogger{Repo: repo}
}

func (a *AuditLogger) Record(ctx context.Context, email, dni, reason, ip string) {
	if a == nil || a.Repo == nil {
		return
	}
	if ip == "" {
		ip = "unknown"
	}
	entry := &models.FailedAttempt{Email: email, DNI: dni, Reason: reason, IPAddress: ip}
	if err := a.Repo.Create(ctx, entry); err != nil {
		log.Printf("[audit] write failed email=%s reason=%q err=%v", email, reason, err)
		return
	}
	log.Printf("[audit] email=%s dni=%s ip=%s reason=%q", email, dni, ip, reason)
}
