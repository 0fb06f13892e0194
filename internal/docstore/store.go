package docstore

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyDocument is returned when a document's text trims to nothing.
var ErrEmptyDocument = errors.New("document text is empty")

// SourceKind tells where a document came from.
type SourceKind string

const (
	SourceUpload    SourceKind = "upload"
	SourceMonitored SourceKind = "monitored"
)

// Document is an immutable member of the active working set. Re-ingesting
// the same content produces a new Document with a new ID; documents are
// never mutated in place.
type Document struct {
	ID         uuid.UUID
	Seq        int
	Name       string
	Text       string
	SourceKind SourceKind
	IngestedAt time.Time
}

// Store holds the active working set of documents for one session, in
// ingestion order. Seq is monotonically increasing for the lifetime of the
// store, across Clear and ReplaceAll.
type Store struct {
	mu      sync.RWMutex
	docs    []*Document
	nextSeq int
}

// NewStore creates an empty document store.
func NewStore() *Store {
	return &Store{nextSeq: 1}
}

// Ingest adds a document to the active set. Fails with ErrEmptyDocument if
// the text trims to empty.
func (s *Store) Ingest(rawText, name string, kind SourceKind) (*Document, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, ErrEmptyDocument
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &Document{
		ID:         uuid.New(),
		Seq:        s.nextSeq,
		Name:       name,
		Text:       rawText,
		SourceKind: kind,
		IngestedAt: time.Now(),
	}
	s.nextSeq++
	s.docs = append(s.docs, doc)

	return doc, nil
}

// ListActive returns the active documents in ingestion order.
func (s *Store) ListActive() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Len returns the number of active documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Clear discards the active set. Billing already incurred for these
// documents is never reversed; the ledger is not this store's concern.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
}

// ReplaceAll swaps the active set wholesale. Used to restore a prior set
// when a downstream write fails mid-operation.
func (s *Store) ReplaceAll(docs []*Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = make([]*Document, len(docs))
	copy(s.docs, docs)
	for _, d := range docs {
		if d.Seq >= s.nextSeq {
			s.nextSeq = d.Seq + 1
		}
	}
}
