package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"ticketera/internal/cache"
	"ticketera/internal/models"
)

var errBoom = errors.New("boom")

// clock is a settable time source shared by services under test.
type clock struct{ t time.Time }

func newClock() *clock { return &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeVerifications struct {
	mu      sync.Mutex
	records map[string]*models.EmailVerification
	getErr  error
}

func newFakeVerifications() *fakeVerifications {
	return &fakeVerifications{records: map[string]*models.EmailVerification{}}
}

func (f *fakeVerifications) Upsert(_ context.Context, v *models.EmailVerification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *v
	f.records[v.Email] = &cp
	return nil
}

func (f *fakeVerifications) GetByEmail(_ context.Context, email string) (*models.EmailVerification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.records[email]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeVerifications) IncrementAttempts(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[email]; ok {
		r.Attempts++
	}
	return nil
}

func (f *fakeVerifications) MarkVerified(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[email]; ok {
		r.Verified = true
	}
	return nil
}

func (f *fakeVerifications) Delete(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, email)
	return nil
}

func (f *fakeVerifications) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, r := range f.records {
		if !r.Verified && now.After(r.ExpiresAt) {
			delete(f.records, k)
			n++
		}
	}
	return n, nil
}

type sentCode struct{ email, code string }

type fakeSender struct {
	sent []sentCode
	err  error
}

func (f *fakeSender) SendCode(_ context.Context, email, code string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentCode{email, code})
	return nil
}

func (f *fakeSender) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].code
}

type fakeOrders struct {
	created        []*models.Order
	pendingEmails  map[string]bool
	pendingDNIs    map[string]bool
	lookupErr      error
	createErr      error
	byID           map[string]*models.Order
	updateConflict bool
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{pendingEmails: map[string]bool{}, pendingDNIs: map[string]bool{}, byID: map[string]*models.Order{}}
}

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, o)
	f.byID[o.ID] = o
	return nil
}

func (f *fakeOrders) HasPendingByEmail(_ context.Context, email string) (bool, error) {
	return f.pendingEmails[email], f.lookupErr
}

func (f *fakeOrders) HasPendingByDNI(_ context.Context, dni string) (bool, error) {
	return f.pendingDNIs[dni], f.lookupErr
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*models.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) List(_ context.Context, status string, limit, offset int) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.created {
		if status == "" || o.ValidationStatus == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateValidationStatus(_ context.Context, id, from, to, reviewer string, at time.Time) (bool, error) {
	if f.updateConflict {
		return false, nil
	}
	o, ok := f.byID[id]
	if !ok || o.ValidationStatus != from {
		return false, nil
	}
	o.ValidationStatus = to
	o.ReviewedBy = &reviewer
	o.ReviewedAt = &at
	return true, nil
}

type fakeAudit struct{ entries []*models.FailedAttempt }

func (f *fakeAudit) Create(_ context.Context, a *models.FailedAttempt) error {
	f.entries = append(f.entries, a)
	return nil
}

type fakeFiles struct {
	objects map[string][]byte
	err     error
}

func (f *fakeFiles) PutObject(path string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[path] = data
	return nil
}

func (f *fakeFiles) PublicURL(path string) string { return "http://files.test/" + path }

type fakeCatalog struct {
	events      map[string]*models.Event
	ticketTypes map[string]*models.TicketType
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		events: map[string]*models.Event{
			"ev-1": {ID: "ev-1", Name: "Rock Fest", Active: true},
			"ev-2": {ID: "ev-2", Name: "Old Show", Active: false},
		},
		ticketTypes: map[string]*models.TicketType{
			"vip":     {ID: "vip", EventID: "ev-1", Name: "VIP", Price: decimal.RequireFromString("120.00"), ColorHex: "#FFD700", Active: true},
			"general": {ID: "general", EventID: "ev-1", Name: "General", Price: decimal.RequireFromString("50.00"), Active: true},
			"other":   {ID: "other", EventID: "ev-9", Name: "Other", Price: decimal.RequireFromString("10.00"), Active: true},
		},
	}
}

func (f *fakeCatalog) ListActiveEvents(context.Context) ([]*models.Event, error) {
	var out []*models.Event
	for _, e := range f.events {
		if e.Active {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetEvent(_ context.Context, id string) (*models.Event, error) {
	return f.events[id], nil
}

func (f *fakeCatalog) ListTicketTypes(_ context.Context, eventID string) ([]*models.TicketType, error) {
	var out []*models.TicketType
	for _, t := range f.ticketTypes {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetTicketType(_ context.Context, id string) (*models.TicketType, error) {
	return f.ticketTypes[id], nil
}

type fakeNotifier struct{ orders []*models.Order }

func (f *fakeNotifier) NotifyNewOrder(_ context.Context, o *models.Order) error {
	f.orders = append(f.orders, o)
	return errBoom
}

// composerFixture wires a PurchaseComposer to fakes with a shared clock.
type composerFixture struct {
	clock    *clock
	verif    *fakeVerifications
	sender   *fakeSender
	orders   *fakeOrders
	audit    *fakeAudit
	files    *fakeFiles
	notifier *fakeNotifier
	kv       *cache.Memory
	limiter  *RateLimiter
	otp      *OTPService
	composer *PurchaseComposer
}

func newComposerFixture() *composerFixture {
	f := &composerFixture{
		clock:    newClock(),
		verif:    newFakeVerifications(),
		sender:   &fakeSender{},
		orders:   newFakeOrders(),
		audit:    &fakeAudit{},
		files:    &fakeFiles{},
		notifier: &fakeNotifier{},
	}
	f.kv = cache.NewMemory().WithClock(f.clock.Now)
	f.limiter = NewRateLimiter(f.kv, 5, 15*time.Minute)
	f.limiter.now = f.clock.Now
	f.otp = NewOTPService(f.verif, f.sender, 15*time.Minute, 3)
	f.otp.now = f.clock.Now
	f.composer = NewPurchaseComposer(f.limiter, NewDuplicateGuard(f.orders), f.otp, NewAuditLogger(f.audit), f.files, f.orders, f.notifier)
	f.composer.now = f.clock.Now
	f.composer.newID = func() string { return "ord-1" }
	return f
}
