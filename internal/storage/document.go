package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/docstore"
)

// DocumentRecord is a persisted document row.
type DocumentRecord struct {
	ID         uuid.UUID
	Seq        int
	Name       string
	Content    string
	SourceKind string
	IngestedAt time.Time
}

// DocumentRepository defines the interface for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, document *DocumentRecord) error
}

// PostgresDocumentRepository implements DocumentRepository using PostgreSQL
type PostgresDocumentRepository struct {
	db *sql.DB
}

// NewPostgresDocumentRepository creates a new PostgresDocumentRepository
func NewPostgresDocumentRepository(db *sql.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{db: db}
}

// Create inserts a new document into the database
func (r *PostgresDocumentRepository) Create(ctx context.Context, document *DocumentRecord) error {
	if document.ID == uuid.Nil {
		document.ID = uuid.New()
	}
	if document.IngestedAt.IsZero() {
		document.IngestedAt = time.Now()
	}

	query := `
		INSERT INTO documents (id, seq, name, content, source_kind, ingested_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		document.ID,
		document.Seq,
		document.Name,
		document.Content,
		document.SourceKind,
		document.IngestedAt,
	)

	return err
}

// recordFromDocument converts an in-session document to its persisted form.
func recordFromDocument(d *docstore.Document) *DocumentRecord {
	return &DocumentRecord{
		ID:         d.ID,
		Seq:        d.Seq,
		Name:       d.Name,
		Content:    d.Text,
		SourceKind: string(d.SourceKind),
		IngestedAt: d.IngestedAt,
	}
}
