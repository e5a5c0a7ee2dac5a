package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ticketera/internal/models"
	"ticketera/internal/storage"
	"ticketera/internal/validation"
)

type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindRateLimited ErrorKind = "rate_limited"
	KindDuplicate   ErrorKind = "duplicate"
	KindDelivery    ErrorKind = "delivery"
	KindInvalidCode ErrorKind = "invalid_code"
	KindExpired     ErrorKind = "expired"
	KindLockedOut   ErrorKind = "locked_out"
	KindStorage     ErrorKind = "storage"
	KindPhase       ErrorKind = "phase"
)

// PurchaseError is the only error type returned by PurchaseComposer.
type PurchaseError struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *PurchaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PurchaseError) Unwrap() error { return e.Err }

func purchaseErr(kind ErrorKind, msg string, err error) *PurchaseError {
	return &PurchaseError{Kind: kind, Message: msg, Err: err}
}

// Voucher: proof-of-payment file as uploaded.
type Voucher struct {
	FileName    string
	ContentType string
	Data        []byte
}

type ObjectStorage interface {
	PutObject(path string, data []byte) error
	PublicURL(path string) string
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
}

// OrderNotifier is told about every stored order. Failures are ignored.
type OrderNotifier interface {
	NotifyNewOrder(ctx context.Context, o *models.Order) error
}

type PurchaseComposer struct {
	Limiter  *RateLimiter
	Guard    *DuplicateGuard
	OTP      *OTPService
	Audit    *AuditLogger
	Files    ObjectStorage
	Orders   OrderStore
	Notifier OrderNotifier

	newID func() string
	now   func() time.Time
}

func NewPurchaseComposer(
	limiter *RateLimiter,
	guard *DuplicateGuard,
	otp *OTPService,
	audit *AuditLogger,
	files ObjectStorage,
	orders OrderStore,
	notifier OrderNotifier,
) *PurchaseComposer {
	return &PurchaseComposer{
		Limiter:  limiter,
		Guard:    guard,
		OTP:      otp,
		Audit:    audit,
		Files:    files,
		Orders:   orders,
		Notifier: notifier,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// setPhase panics on a transition missing from PhaseTransitions: callers
// check the current phase first, so hitting it is a programming error.
func setPhase(co *models.Checkout, to models.Phase) {
	if !canTransition(co.Phase, to, PhaseTransitions) {
		panic(fmt.Sprintf("checkout %s: illegal phase change %s -> %s", co.ID, co.Phase, to))
	}
	co.Phase = to
}

func limiterKeys(email, ip string) []string {
	keys := []string{email}
	if ip != "" && ip != "unknown" {
		keys = append(keys, "ip:"+ip)
	}
	return keys
}

func (c *PurchaseComposer) checkLimits(ctx context.Context, keys []string) *RateDecision {
	for _, k := range keys {
		d := c.Limiter.CanAttempt(ctx, k)
		if !d.Allowed {
			return &d
		}
	}
	return nil
}

func (c *PurchaseComposer) recordAttempt(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := c.Limiter.RecordAttempt(ctx, k); err != nil {
			log.Printf("[purchase][ratelimit] record %s failed: %v", k, err)
		}
	}
}

// SubmitContact validates the form, applies the attempt limit and duplicate
// checks, then issues a code. Each issued code is recorded against the
// attempt limit. On success the checkout moves to verification holding the
// normalized contact.
func (c *PurchaseComposer) SubmitContact(ctx context.Context, co *models.Checkout, raw models.ContactInfo, ip string) error {
	if co.Phase != models.PhaseForm {
		return purchaseErr(KindPhase, "contact can only be submitted from the form step", nil)
	}

	contact, err := validation.ValidateForm(raw)
	if err != nil {
		var fe *validation.FieldError
		msg := err.Error()
		field := ""
		if errors.As(err, &fe) {
			msg, field = fe.Message, fe.Field
		}
		c.Audit.Record(ctx, strings.TrimSpace(raw.Email), validation.DigitsOnly(raw.DNI), "validation: "+msg, ip)
		return &PurchaseError{Kind: KindValidation, Field: field, Message: msg, Err: err}
	}

	keys := limiterKeys(contact.Email, ip)
	if d := c.checkLimits(ctx, keys); d != nil {
		c.Audit.Record(ctx, contact.Email, contact.DNI, "rate limited", ip)
		return purchaseErr(KindRateLimited, d.Message, nil)
	}

	dup, err := c.Guard.EmailHasPendingOrder(ctx, contact.Email)
	if err != nil {
		return purchaseErr(KindStorage, "could not verify previous purchases, try again", err)
	}
	if dup {
		c.recordAttempt(ctx, keys)
		c.Audit.Record(ctx, contact.Email, contact.DNI, "pending purchase for email", ip)
		return &PurchaseError{Kind: KindDuplicate, Field: "email", Message: "there is already a pending purchase for this email"}
	}
	dup, err = c.Guard.DNIHasPendingOrder(ctx, contact.DNI)
	if err != nil {
		return purchaseErr(KindStorage, "could not verify previous purchases, try again", err)
	}
	if dup {
		c.recordAttempt(ctx, keys)
		c.Audit.Record(ctx, contact.Email, contact.DNI, "pending purchase for dni", ip)
		return &PurchaseError{Kind: KindDuplicate, Field: "dni", Message: "there is already a pending purchase for this DNI"}
	}

	// every issued code counts, so Back + SubmitContact is throttled like a resend
	c.recordAttempt(ctx, keys)
	if err := c.OTP.IssueCode(ctx, contact.Email); err != nil {
		if errors.Is(err, ErrDelivery) {
			return purchaseErr(KindDelivery, "could not send the verification code, try again", err)
		}
		return purchaseErr(KindStorage, "could not create the verification code, try again", err)
	}

	co.Contact = &contact
	setPhase(co, models.PhaseVerification)
	log.Printf("[purchase][contact] checkout=%s email=%s -> verification", co.ID, contact.Email)
	return nil
}

// ResendCode issues a fresh code for the contact already on the checkout.
// Each resend counts against the attempt limit.
func (c *PurchaseComposer) ResendCode(ctx context.Context, co *models.Checkout, ip string) error {
	if co.Phase != models.PhaseVerification || co.Contact == nil {
		return purchaseErr(KindPhase, "no verification in progress", nil)
	}
	keys := limiterKeys(co.Contact.Email, ip)
	if d := c.checkLimits(ctx, keys); d != nil {
		c.Audit.Record(ctx, co.Contact.Email, co.Contact.DNI, "rate limited (resend)", ip)
		return purchaseErr(KindRateLimited, d.Message, nil)
	}
	c.recordAttempt(ctx, keys)
	if err := c.OTP.IssueCode(ctx, co.Contact.Email); err != nil {
		if errors.Is(err, ErrDelivery) {
			return purchaseErr(KindDelivery, "could not send the verification code, try again", err)
		}
		return purchaseErr(KindStorage, "could not create the verification code, try again", err)
	}
	return nil
}

// SubmitCode checks the code for the checkout's contact. Malformed codes are
// rejected before any storage access.
func (c *PurchaseComposer) SubmitCode(ctx context.Context, co *models.Checkout, raw string) error {
	if co.Phase != models.PhaseVerification || co.Contact == nil {
		return purchaseErr(KindPhase, "no verification in progress", nil)
	}
	code := SanitizeCode(raw)
	if len(code) != codeLength {
		return &PurchaseError{Kind: KindValidation, Field: "code", Message: "the code must have 6 digits"}
	}

	email := co.Contact.Email
	err := c.OTP.CheckCode(ctx, email, code)
	switch {
	case err == nil:
	case errors.Is(err, ErrCodeInvalid):
		c.recordAttempt(ctx, []string{email})
		return purchaseErr(KindInvalidCode, "invalid code", err)
	case errors.Is(err, ErrCodeExpired):
		c.recordAttempt(ctx, []string{email})
		return purchaseErr(KindExpired, "the code has expired, request a new one", err)
	case errors.Is(err, ErrTooManyAttempts):
		c.recordAttempt(ctx, []string{email})
		return purchaseErr(KindLockedOut, ErrTooManyAttempts.Error(), err)
	default:
		return purchaseErr(KindStorage, "could not check the code, try again", err)
	}

	if err := c.Limiter.Clear(ctx, email); err != nil {
		log.Printf("[purchase][code] clear limiter %s failed: %v", email, err)
	}
	setPhase(co, models.PhaseCompose)
	log.Printf("[purchase][code] checkout=%s email=%s verified -> compose", co.ID, email)
	return nil
}

// Back returns from verification to the form. The issued code stays valid.
func (c *PurchaseComposer) Back(co *models.Checkout) error {
	if co.Phase != models.PhaseVerification {
		return purchaseErr(KindPhase, "back is only available during verification", nil)
	}
	setPhase(co, models.PhaseForm)
	return nil
}

// SubmitPurchase uploads the voucher and stores the order with its lines.
// On success the checkout is reset to an empty form.
func (c *PurchaseComposer) SubmitPurchase(ctx context.Context, co *models.Checkout, v *Voucher) (*models.Order, error) {
	if co.Phase != models.PhaseCompose || co.Contact == nil {
		return nil, purchaseErr(KindPhase, "the email has not been verified", nil)
	}
	if co.Cart.IsEmpty() {
		return nil, &PurchaseError{Kind: KindValidation, Field: "cart", Message: "the cart is empty"}
	}
	if !models.ValidEventID(co.EventID) {
		return nil, &PurchaseError{Kind: KindValidation, Field: "event_id", Message: "unknown event"}
	}
	if v == nil || len(v.Data) == 0 {
		return nil, &PurchaseError{Kind: KindValidation, Field: "voucher", Message: "a payment voucher is required"}
	}

	orderID := c.newID()
	path := storage.ObjectPath(orderID, v.FileName)
	if err := c.Files.PutObject(path, v.Data); err != nil {
		return nil, purchaseErr(KindStorage, "could not upload the voucher, try again", err)
	}

	order := BuildOrder(co, orderID, c.Files.PublicURL(path), c.now())
	if err := c.Orders.Create(ctx, order); err != nil {
		return nil, purchaseErr(KindStorage, "could not save the purchase, try again", err)
	}
	log.Printf("[purchase][compose] order=%s event=%s email=%s tickets=%d total=%s",
		order.ID, order.EventID, order.Email, order.TotalTickets, order.TotalAmount.StringFixed(2))

	if c.Notifier != nil {
		if err := c.Notifier.NotifyNewOrder(ctx, order); err != nil {
			log.Printf("[purchase][notify] order=%s err=%v", order.ID, err)
		}
	}

	co.Reset()
	return order, nil
}

// BuildOrder turns a verified checkout into a pending order.
func BuildOrder(co *models.Checkout, orderID, voucherURL string, now time.Time) *models.Order {
	total := co.Cart.Total()
	o := &models.Order{
		ID:               orderID,
		EventID:          co.EventID,
		FullName:         co.Contact.FullName,
		DNI:              co.Contact.DNI,
		Email:            co.Contact.Email,
		Phone:            co.Contact.Phone,
		TotalTickets:     co.Cart.TicketCount(),
		TotalAmount:      total,
		PaymentReference: PaymentReference(co.EventID, len(co.Cart.Items), orderID, total),
		PaymentStatus:    models.PaymentStatusVoucherUploaded,
		VoucherURL:       voucherURL,
		ValidationStatus: models.ValidationPending,
		CreatedAt:        now,
	}
	for _, it := range co.Cart.Items {
		o.Items = append(o.Items, models.OrderItem{
			OrderID:      orderID,
			TicketTypeID: it.TicketTypeID,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
		})
	}
	return o
}

// PaymentRef: parsed form of the pago|... token.
type PaymentRef struct {
	EventID string
	Items   int
	OrderID string
	Amount  decimal.Decimal
}

func PaymentReference(eventID string, items int, orderID string, amount decimal.Decimal) string {
	return fmt.Sprintf("pago|evento:%s|items:%d|id:%s|monto:%s", eventID, items, orderID, amount.StringFixed(2))
}

func ParsePaymentReference(s string) (*PaymentRef, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 5 || parts[0] != "pago" {
		return nil, fmt.Errorf("payment reference: malformed %q", s)
	}
	vals := make(map[string]string, 4)
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(p, ":")
		if !ok {
			return nil, fmt.Errorf("payment reference: malformed field %q", p)
		}
		vals[k] = v
	}

	var (
		ref PaymentRef
		err error
	)
	if ref.EventID = vals["evento"]; ref.EventID == "" {
		return nil, errors.New("payment reference: empty evento")
	}
	if ref.Items, err = strconv.Atoi(vals["items"]); err != nil {
		return nil, fmt.Errorf("payment reference: items: %w", err)
	}
	if ref.OrderID = vals["id"]; ref.OrderID == "" {
		return nil, errors.New("payment reference: empty id")
	}
	if ref.Amount, err = decimal.NewFromString(vals["monto"]); err != nil {
		return nil, fmt.Errorf("payment reference: monto: %w", err)
	}
	return &ref, nil
}
