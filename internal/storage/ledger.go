package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/ledger"
)

// PostgresLedger implements ledger.Ledger on a usage_entries table. The
// table is append-only; totals are derived with aggregate queries so a
// restarted server reports the same numbers as the session that wrote
// the entries.
type PostgresLedger struct {
	db *sql.DB
}

// NewPostgresLedger creates a new PostgresLedger
func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Record appends a usage entry
func (l *PostgresLedger) Record(ctx context.Context, kind ledger.Kind, cost float64, documents int) (*ledger.Entry, error) {
	entry := &ledger.Entry{
		ID:        uuid.New(),
		Kind:      kind,
		Cost:      ledger.RoundCents(cost),
		Documents: documents,
		Timestamp: time.Now(),
	}

	query := `
		INSERT INTO usage_entries (id, kind, cost, documents, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := l.db.ExecContext(ctx, query,
		entry.ID,
		string(entry.Kind),
		entry.Cost,
		entry.Documents,
		entry.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// Entries returns the full log in append order
func (l *PostgresLedger) Entries(ctx context.Context) ([]*ledger.Entry, error) {
	query := `
		SELECT id, kind, cost, documents, recorded_at
		FROM usage_entries
		ORDER BY seq ASC
	`

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		entry := &ledger.Entry{}
		var kind string
		err := rows.Scan(
			&entry.ID,
			&kind,
			&entry.Cost,
			&entry.Documents,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		entry.Kind = ledger.Kind(kind)
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Totals aggregates over the full log in SQL, matching ledger.Aggregate.
func (l *PostgresLedger) Totals(ctx context.Context) (ledger.Totals, error) {
	query := `
		SELECT
			COALESCE(SUM(documents) FILTER (WHERE kind = 'analyze'), 0),
			COUNT(*) FILTER (WHERE kind = 'report'),
			COALESCE(SUM(cost), 0)
		FROM usage_entries
	`

	var t ledger.Totals
	var spent float64
	err := l.db.QueryRowContext(ctx, query).Scan(
		&t.DocumentsChecked,
		&t.ReportsGenerated,
		&spent,
	)
	if err != nil {
		return ledger.Totals{}, err
	}

	t.Balance = ledger.RoundCents(spent)
	t.TotalSpent = ledger.RoundCents(spent)
	return t, nil
}
