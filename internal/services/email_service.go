package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"gopkg.in/gomail.v2"

	"ticketera/internal/models"
	"ticketera/internal/pdf"
)

const entryQRSize = 256

// EmailService sends buyer mail.
type EmailService interface {
	CodeSender
	OrderMailer
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) message(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return m
}

func (s *emailService) send(to, subject, body string) error {
	return s.dialer.DialAndSend(s.message(to, subject, body))
}

func (s *emailService) SendCode(_ context.Context, email, code string) error {
	body := fmt.Sprintf(`
		<h3>Your verification code</h3>
		<p>Use this code to confirm your ticket purchase: <strong>%s</strong></p>
		<p>The code expires in 15 minutes. If you did not start a purchase, ignore this email.</p>
	`, code)
	if err := s.send(email, "Ticket purchase verification code", body); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// approvedMessage carries the entry QR (payment reference) as an inline image.
func (s *emailService) approvedMessage(o *models.Order) (*gomail.Message, error) {
	qrPNG, err := pdf.QRCodePNG(o.PaymentReference, entryQRSize)
	if err != nil {
		return nil, fmt.Errorf("entry qr: %w", err)
	}
	name := "entrada-" + o.ID + ".png"
	body := fmt.Sprintf(`
		<h3>Your purchase was approved</h3>
		<p>Hello %s, your payment for %d ticket(s) (total %s) has been validated.</p>
		<p>Order: <strong>%s</strong></p>
		<p>Show this QR code at the entrance:</p>
		<img src="cid:%s" alt="entry QR">
	`, o.FullName, o.TotalTickets, o.TotalAmount.StringFixed(2), o.ID, name)
	m := s.message(o.Email, "Purchase approved", body)
	m.Embed(name, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(qrPNG)
		return err
	}))
	return m, nil
}

func (s *emailService) SendOrderApproved(o *models.Order) error {
	m, err := s.approvedMessage(o)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send approval email: %w", err)
	}
	return nil
}

func (s *emailService) SendOrderRejected(o *models.Order) error {
	body := fmt.Sprintf(`
		<h3>We could not validate your payment</h3>
		<p>Hello %s, the voucher uploaded for order <strong>%s</strong> was rejected.</p>
		<p>Please contact us if you think this is a mistake.</p>
	`, o.FullName, o.ID)
	if err := s.send(o.Email, "Purchase rejected", body); err != nil {
		return fmt.Errorf("failed to send rejection email: %w", err)
	}
	return nil
}

// dryRunMailer logs instead of sending. Local development only: it prints codes.
type dryRunMailer struct{}

func NewDryRunMailer() EmailService { return dryRunMailer{} }

func (dryRunMailer) SendCode(_ context.Context, email, code string) error {
	log.Printf("[mail][dry-run] to=%s code=%s", email, code)
	return nil
}

func (dryRunMailer) SendOrderApproved(o *models.Order) error {
	log.Printf("[mail][dry-run] to=%s order=%s approved", o.Email, o.ID)
	return nil
}

func (dryRunMailer) SendOrderRejected(o *models.Order) error {
	log.Printf("[mail][dry-run] to=%s order=%s rejected", o.Email, o.ID)
	return nil
}
