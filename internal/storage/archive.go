package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/docstore"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/extract"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/monitor"
)

// PostgresArchive persists analysis outcomes and monitored sources. It is
// a write-behind archive: the in-memory session stays authoritative and
// archive failures never fail the operation that triggered them.
type PostgresArchive struct {
	documents  DocumentRepository
	statements StatementRepository
	monitored  MonitoredSourceRepository
}

// NewPostgresArchive creates an archive over one database handle.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{
		documents:  NewPostgresDocumentRepository(db),
		statements: NewPostgresStatementRepository(db),
		monitored:  NewPostgresMonitoredSourceRepository(db),
	}
}

// SaveAnalysis persists the documents of one analysis run and the
// statements extracted from them.
func (a *PostgresArchive) SaveAnalysis(ctx context.Context, docs []*docstore.Document, statements []*extract.Statement) error {
	for _, d := range docs {
		if err := a.documents.Create(ctx, recordFromDocument(d)); err != nil {
			return fmt.Errorf("archive document %q: %w", d.Name, err)
		}
	}

	records := make([]*StatementRecord, len(statements))
	for i, s := range statements {
		records[i] = recordFromStatement(s)
	}
	if err := a.statements.CreateBatch(ctx, records); err != nil {
		return fmt.Errorf("archive statements: %w", err)
	}

	return nil
}

// SaveMonitoredSource persists the current state of a monitored source.
func (a *PostgresArchive) SaveMonitoredSource(ctx context.Context, source *monitor.Source) error {
	if err := a.monitored.Upsert(ctx, recordFromSource(source)); err != nil {
		return fmt.Errorf("archive monitored source %q: %w", source.URL, err)
	}
	return nil
}
