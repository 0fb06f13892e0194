package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/extract"
)

// StatementRecord is a persisted extracted statement row.
type StatementRecord struct {
	ID          uuid.UUID
	DocumentID  uuid.UUID
	Position    int
	Text        string
	Kind        string
	Polarity    int
	ValueUnit   sql.NullString
	ValueAmount sql.NullFloat64
	TermVector  pgvector.Vector
	CreatedAt   time.Time
}

// StatementRepository defines the interface for statement persistence.
type StatementRepository interface {
	CreateBatch(ctx context.Context, statements []*StatementRecord) error
}

// PostgresStatementRepository implements StatementRepository using PostgreSQL
type PostgresStatementRepository struct {
	db *sql.DB
}

// NewPostgresStatementRepository creates a new PostgresStatementRepository
func NewPostgresStatementRepository(db *sql.DB) *PostgresStatementRepository {
	return &PostgresStatementRepository{db: db}
}

// CreateBatch inserts statements inside a single transaction
func (r *PostgresStatementRepository) CreateBatch(ctx context.Context, statements []*StatementRecord) error {
	if len(statements) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO statements (id, document_id, position, text, kind, polarity, value_unit, value_amount, term_vector, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range statements {
		if s.CreatedAt.IsZero() {
			s.CreatedAt = time.Now()
		}
		_, err := stmt.ExecContext(ctx,
			s.ID,
			s.DocumentID,
			s.Position,
			s.Text,
			s.Kind,
			s.Polarity,
			s.ValueUnit,
			s.ValueAmount,
			s.TermVector,
			s.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// recordFromStatement converts an extracted statement to its persisted form.
func recordFromStatement(s *extract.Statement) *StatementRecord {
	rec := &StatementRecord{
		ID:         s.ID,
		DocumentID: s.DocumentID,
		Position:   s.Position,
		Text:       s.Text,
		Kind:       string(s.Kind),
		Polarity:   int(s.Polarity),
		TermVector: pgvector.NewVector(extract.TermVector(s.Tokens)),
	}
	if s.Normalized != nil {
		rec.ValueUnit = sql.NullString{String: s.Normalized.Unit, Valid: true}
		rec.ValueAmount = sql.NullFloat64{Float64: s.Normalized.Amount, Valid: true}
	}
	return rec
}
