package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/ledger"
)

func TestPostgresLedger_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	l := NewPostgresLedger(db)

	mock.ExpectExec("INSERT INTO usage_entries").
		WithArgs(sqlmock.AnyArg(), "analyze", 1.0, 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry, err := l.Record(context.Background(), ledger.KindAnalyze, 1.00, 2)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if entry == nil {
		t.Fatal("expected entry to be returned")
	}

	if entry.ID == uuid.Nil {
		t.Error("expected entry ID to be generated")
	}

	if entry.Cost != 1.00 {
		t.Errorf("expected cost 1.00, got %v", entry.Cost)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresLedger_RecordRoundsCost(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	l := NewPostgresLedger(db)

	mock.ExpectExec("INSERT INTO usage_entries").
		WithArgs(sqlmock.AnyArg(), "monitor", 0.10, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry, err := l.Record(context.Background(), ledger.KindMonitor, 0.1000001, 0)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if entry.Cost != 0.10 {
		t.Errorf("expected cost 0.10, got %v", entry.Cost)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresLedger_Entries(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	l := NewPostgresLedger(db)

	firstID := uuid.New()
	secondID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "kind", "cost", "documents", "recorded_at"}).
		AddRow(firstID, "analyze", 1.00, 2, now).
		AddRow(secondID, "report", 1.00, 0, now)

	mock.ExpectQuery("SELECT (.+) FROM usage_entries").
		WillReturnRows(rows)

	entries, err := l.Entries(context.Background())
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].ID != firstID {
		t.Errorf("expected first entry %s, got %s", firstID, entries[0].ID)
	}

	if entries[1].Kind != ledger.KindReport {
		t.Errorf("expected kind report, got %s", entries[1].Kind)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresLedger_Totals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	l := NewPostgresLedger(db)

	rows := sqlmock.NewRows([]string{"documents", "reports", "spent"}).
		AddRow(5, 2, 4.60)

	mock.ExpectQuery("SELECT (.+) FROM usage_entries").
		WillReturnRows(rows)

	totals, err := l.Totals(context.Background())
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if totals.DocumentsChecked != 5 {
		t.Errorf("expected 5 documents checked, got %d", totals.DocumentsChecked)
	}

	if totals.ReportsGenerated != 2 {
		t.Errorf("expected 2 reports, got %d", totals.ReportsGenerated)
	}

	if totals.Balance != 4.60 || totals.TotalSpent != 4.60 {
		t.Errorf("expected balance and spent 4.60, got %v and %v", totals.Balance, totals.TotalSpent)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
