package ledger

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the billable action an entry records.
type Kind string

const (
	KindAnalyze Kind = "analyze"
	KindReport  Kind = "report"
	KindMonitor Kind = "monitor"
)

// Entry is one billable event. The log is append-only: entries are never
// updated or deleted, and every total is derived from them.
type Entry struct {
	ID        uuid.UUID
	Kind      Kind
	Cost      float64
	Documents int // document count covered by an analyze entry
	Timestamp time.Time
}

// Totals are the derived aggregates over the full entry log.
//
// Balance and TotalSpent track the same running sum today: there is no
// refund entry kind, so nothing ever reduces one without the other. They
// are aggregated independently so a future refund kind (negative cost
// applied to Balance only) changes the aggregation, not the log.
type Totals struct {
	DocumentsChecked int
	ReportsGenerated int
	Balance          float64
	TotalSpent       float64
}

// Ledger is the append-only record of billable actions. Record never
// rejects on balance: the balance is a metering counter that may go
// negative, not a payment gate.
type Ledger interface {
	Record(ctx context.Context, kind Kind, cost float64, documents int) (*Entry, error)
	Entries(ctx context.Context) ([]*Entry, error)
	Totals(ctx context.Context) (Totals, error)
}

// MemoryLedger is the in-memory Ledger for a single session.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

// Record appends an entry.
func (l *MemoryLedger) Record(_ context.Context, kind Kind, cost float64, documents int) (*Entry, error) {
	entry := &Entry{
		ID:        uuid.New(),
		Kind:      kind,
		Cost:      RoundCents(cost),
		Documents: documents,
		Timestamp: time.Now(),
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	return entry, nil
}

// Entries returns the full log in append order.
func (l *MemoryLedger) Entries(_ context.Context) ([]*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Entry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

// Totals aggregates over the full log.
func (l *MemoryLedger) Totals(_ context.Context) (Totals, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return Aggregate(l.entries), nil
}

// Aggregate derives totals from a slice of entries. Exported so any
// Ledger implementation and its tests agree on the aggregation law.
func Aggregate(entries []*Entry) Totals {
	var t Totals
	for _, e := range entries {
		switch e.Kind {
		case KindAnalyze:
			t.DocumentsChecked += e.Documents
		case KindReport:
			t.ReportsGenerated++
		}
		t.Balance = RoundCents(t.Balance + e.Cost)
		t.TotalSpent = RoundCents(t.TotalSpent + e.Cost)
	}
	return t
}

// RoundCents rounds a dollar amount to whole cents.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
