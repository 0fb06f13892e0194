package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestPostgresDocumentRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresDocumentRepository(db)

	document := &DocumentRecord{
		Seq:        1,
		Name:       "Employee Handbook",
		Content:    "Employees must provide two weeks notice.",
		SourceKind: "upload",
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(sqlmock.AnyArg(), document.Seq, document.Name, document.Content, document.SourceKind, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), document)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if document.ID == uuid.Nil {
		t.Error("expected document ID to be generated")
	}

	if document.IngestedAt.IsZero() {
		t.Error("expected ingested time to be set")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
