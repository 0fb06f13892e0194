package models

import (
	"time"
)

// Document represents an analyzed document
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SourceKind string    `json:"source_kind"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Conflict represents a detected contradiction between two documents
type Conflict struct {
	ID           string   `json:"id"`
	Documents    []string `json:"documents"`
	StatementIDs []string `json:"statement_ids"`
	Conflict     string   `json:"conflict"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Severity     string   `json:"severity"`
	Suggestion   string   `json:"suggestion"`
}

// UsageTotals represents the derived usage ledger totals
type UsageTotals struct {
	DocumentsChecked int     `json:"documents_checked"`
	ReportsGenerated int     `json:"reports_generated"`
	Balance          float64 `json:"balance"`
	TotalSpent       float64 `json:"total_spent"`
}

// MonitoredSource represents an external URL under watch
type MonitoredSource struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Status        string    `json:"status"`
	LastCheckedAt time.Time `json:"last_checked_at"`
	CreatedAt     time.Time `json:"created_at"`
}
