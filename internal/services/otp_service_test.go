package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"
)

func newTestOTP() (*OTPService, *fakeVerifications, *fakeSender, *clock) {
	clk := newClock()
	repo := newFakeVerifications()
	sender := &fakeSender{}
	s := NewOTPService(repo, sender, 15*time.Minute, 3)
	s.now = clk.Now
	return s, repo, sender, clk
}

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatal(err)
		}
		n, err := strconv.Atoi(code)
		if err != nil || len(code) != 6 || n < 100000 || n > 999999 {
			t.Fatalf("bad code %q", code)
		}
	}
}

func TestSanitizeCode(t *testing.T) {
	cases := map[string]string{
		"12a34b56": "123456",
		"1234567":  "123456",
		" 12 ":     "12",
		"abc":      "",
	}
	for in, want := range cases {
		if got := SanitizeCode(in); got != want {
			t.Errorf("SanitizeCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIssueAndCheckCode(t *testing.T) {
	ctx := context.Background()
	s, repo, sender, _ := newTestOTP()

	if err := s.IssueCode(ctx, "juan@example.com"); err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	rec := repo.records["juan@example.com"]
	if rec == nil || rec.Attempts != 0 || rec.Verified || rec.Code != sender.last() {
		t.Fatalf("unexpected record %+v", rec)
	}
	if got := rec.ExpiresAt.Sub(rec.CreatedAt); got != 15*time.Minute {
		t.Fatalf("ttl = %s", got)
	}

	if err := s.CheckCode(ctx, "juan@example.com", sender.last()); err != nil {
		t.Fatalf("CheckCode: %v", err)
	}
	if !repo.records["juan@example.com"].Verified {
		t.Fatal("record should be verified and kept")
	}
}

func TestIssueCodeOverwritesPrevious(t *testing.T) {
	ctx := context.Background()
	s, repo, sender, _ := newTestOTP()
	codes := []string{"111111", "222222"}
	s.newCode = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	_ = s.IssueCode(ctx, "a@b.co")
	_ = s.CheckCode(ctx, "a@b.co", "999999")
	_ = s.IssueCode(ctx, "a@b.co")

	if got := repo.records["a@b.co"]; got.Code != "222222" || got.Attempts != 0 {
		t.Fatalf("record not overwritten: %+v", got)
	}
	if err := s.CheckCode(ctx, "a@b.co", "111111"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("old code: got %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d codes", len(sender.sent))
	}
}

func TestIssueCodeDeliveryFailureKeepsRecord(t *testing.T) {
	s, repo, sender, _ := newTestOTP()
	sender.err = errBoom

	err := s.IssueCode(context.Background(), "a@b.co")
	if !errors.Is(err, ErrDelivery) {
		t.Fatalf("got %v, want ErrDelivery", err)
	}
	if repo.records["a@b.co"] == nil {
		t.Fatal("record should survive a failed dispatch")
	}
}

func TestCheckCodeLockout(t *testing.T) {
	ctx := context.Background()
	s, repo, sender, _ := newTestOTP()
	_ = s.IssueCode(ctx, "a@b.co")
	good := sender.last()
	bad := "000000"
	if good == bad {
		bad = "000001"
	}

	for i := 0; i < 3; i++ {
		if err := s.CheckCode(ctx, "a@b.co", bad); !errors.Is(err, ErrCodeInvalid) {
			t.Fatalf("attempt %d: got %v", i+1, err)
		}
	}
	// fourth attempt is refused even with the right code
	if err := s.CheckCode(ctx, "a@b.co", good); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("got %v, want ErrTooManyAttempts", err)
	}
	if _, ok := repo.records["a@b.co"]; ok {
		t.Fatal("record should be deleted on lockout")
	}
	if err := s.CheckCode(ctx, "a@b.co", good); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("after lockout: got %v", err)
	}

	// a new code after lockout starts from zero attempts
	if err := s.IssueCode(ctx, "a@b.co"); err != nil {
		t.Fatalf("reissue: %v", err)
	}
	if r := repo.records["a@b.co"]; r == nil || r.Attempts != 0 || r.Verified {
		t.Fatalf("reissued record = %+v", r)
	}
	if err := s.CheckCode(ctx, "a@b.co", sender.last()); err != nil {
		t.Fatalf("fresh code: %v", err)
	}
	if !repo.records["a@b.co"].Verified {
		t.Fatal("record should be verified")
	}
}

func TestCheckCodeExpired(t *testing.T) {
	ctx := context.Background()
	s, repo, sender, clk := newTestOTP()
	_ = s.IssueCode(ctx, "a@b.co")

	clk.Advance(15*time.Minute + time.Second)
	if err := s.CheckCode(ctx, "a@b.co", sender.last()); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("got %v, want ErrCodeExpired", err)
	}
	if _, ok := repo.records["a@b.co"]; ok {
		t.Fatal("expired record should be deleted")
	}
}

func TestCheckCodeWithoutRecord(t *testing.T) {
	s, _, _, _ := newTestOTP()
	if err := s.CheckCode(context.Background(), "none@b.co", "123456"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("got %v", err)
	}
}

func TestCheckCodeStorageError(t *testing.T) {
	s, repo, _, _ := newTestOTP()
	repo.getErr = errBoom
	err := s.CheckCode(context.Background(), "a@b.co", "123456")
	if !errors.Is(err, errBoom) {
		t.Fatalf("got %v", err)
	}
}
