package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/monitor"
)

// MonitoredSourceRecord is a persisted monitored source row.
type MonitoredSourceRecord struct {
	ID            uuid.UUID
	URL           string
	Status        string
	LastCheckedAt sql.NullTime
	CreatedAt     time.Time
}

// MonitoredSourceRepository defines the interface for monitored source persistence.
type MonitoredSourceRepository interface {
	Upsert(ctx context.Context, source *MonitoredSourceRecord) error
	List(ctx context.Context) ([]*MonitoredSourceRecord, error)
}

// PostgresMonitoredSourceRepository implements MonitoredSourceRepository using PostgreSQL
type PostgresMonitoredSourceRepository struct {
	db *sql.DB
}

// NewPostgresMonitoredSourceRepository creates a new PostgresMonitoredSourceRepository
func NewPostgresMonitoredSourceRepository(db *sql.DB) *PostgresMonitoredSourceRepository {
	return &PostgresMonitoredSourceRepository{db: db}
}

// Upsert inserts a monitored source or refreshes its status and check time
func (r *PostgresMonitoredSourceRepository) Upsert(ctx context.Context, source *MonitoredSourceRecord) error {
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO monitored_sources (id, url, status, last_checked_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, last_checked_at = EXCLUDED.last_checked_at
	`

	_, err := r.db.ExecContext(ctx, query,
		source.ID,
		source.URL,
		source.Status,
		source.LastCheckedAt,
		source.CreatedAt,
	)

	return err
}

// List retrieves all monitored sources in registration order
func (r *PostgresMonitoredSourceRepository) List(ctx context.Context) ([]*MonitoredSourceRecord, error) {
	query := `
		SELECT id, url, status, last_checked_at, created_at
		FROM monitored_sources
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*MonitoredSourceRecord
	for rows.Next() {
		source := &MonitoredSourceRecord{}
		err := rows.Scan(
			&source.ID,
			&source.URL,
			&source.Status,
			&source.LastCheckedAt,
			&source.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return sources, nil
}

// recordFromSource converts an in-session monitored source to its persisted form.
func recordFromSource(s *monitor.Source) *MonitoredSourceRecord {
	rec := &MonitoredSourceRecord{
		ID:        s.ID,
		URL:       s.URL,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
	}
	if !s.LastCheckedAt.IsZero() {
		rec.LastCheckedAt = sql.NullTime{Time: s.LastCheckedAt, Valid: true}
	}
	return rec
}

// RestoreSources converts persisted rows back into registry sources, for
// seeding a fresh session at startup. Snapshot text is not persisted, so
// restored sources await a fresh snapshot.
func RestoreSources(records []*MonitoredSourceRecord) []*monitor.Source {
	sources := make([]*monitor.Source, 0, len(records))
	for _, rec := range records {
		s := &monitor.Source{
			ID:        rec.ID,
			URL:       rec.URL,
			Status:    monitor.Status(rec.Status),
			CreatedAt: rec.CreatedAt,
		}
		if rec.LastCheckedAt.Valid {
			s.LastCheckedAt = rec.LastCheckedAt.Time
		}
		sources = append(sources, s)
	}
	return sources
}
