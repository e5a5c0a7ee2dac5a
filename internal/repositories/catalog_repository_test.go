package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"ticketera/internal/models"
)

func TestCatalogListTicketTypes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cols := []string{"id", "event_id", "name", "description", "price", "color_hex", "active"}
	mock.ExpectQuery(`FROM ticket_types\s+WHERE event_id = \$1 AND active = TRUE`).
		WithArgs("E1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("GEN", "E1", "General", "", "50.00", "", true).
			AddRow("VIP", "E1", "VIP", "front rows", "120.00", "#FFD700", true))

	types, err := NewCatalogRepository(db).ListTicketTypes(context.Background(), "E1")
	if err != nil {
		t.Fatal(err)
	}
	if len(types) != 2 || types[1].Price.StringFixed(2) != "120.00" || types[1].ColorHex != "#FFD700" {
		t.Fatalf("types = %+v", types)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCatalogGetEventMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM events`).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ev, err := NewCatalogRepository(db).GetEvent(context.Background(), "nope")
	if err != nil || ev != nil {
		t.Fatalf("got %v %v", ev, err)
	}
}

func TestFailedAttemptCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO failed_purchase_attempts`).
		WithArgs("juan@x.com", "12345678", "rate limited", "10.0.0.1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))

	a := &models.FailedAttempt{Email: "juan@x.com", DNI: "12345678", Reason: "rate limited", IPAddress: "10.0.0.1"}
	if err := NewFailedAttemptRepository(db).Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if a.ID != 7 || !a.CreatedAt.Equal(now) {
		t.Fatalf("attempt = %+v", a)
	}
}
