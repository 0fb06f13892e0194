package monitor

import (
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidURL is returned when a registration URL is malformed.
	ErrInvalidURL = errors.New("invalid url")
	// ErrSourceNotFound is returned when a source id is unknown.
	ErrSourceNotFound = errors.New("monitored source not found")
)

// Status tracks where a monitored source sits in the review flow.
type Status string

const (
	StatusNew      Status = "new"
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
)

// Source is an external URL under watch, with the last known snapshot of
// its text. Only this registry mutates a source.
type Source struct {
	ID               uuid.UUID
	URL              string
	LastSnapshotText string
	HasSnapshot      bool
	LastCheckedAt    time.Time
	Status           Status
	CreatedAt        time.Time
}

// Registry tracks monitored sources in registration order.
type Registry struct {
	mu      sync.RWMutex
	sources []*Source
	byID    map[uuid.UUID]*Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[uuid.UUID]*Source)}
}

// ValidateURL rejects anything that is not an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// Register adds a URL to the watch list. New sources start pending: they
// await their first snapshot.
func (r *Registry) Register(rawURL string) (*Source, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	source := &Source{
		ID:        uuid.New(),
		URL:       rawURL,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	r.sources = append(r.sources, source)
	r.byID[source.ID] = source

	return source, nil
}

// Remove deletes a source. Used to unwind a registration whose paired
// ledger write failed.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, s := range r.sources {
		if s.ID == id {
			r.sources = append(r.sources[:i], r.sources[i+1:]...)
			break
		}
	}
}

// State is a copy of a source's mutable fields, captured before a
// snapshot is applied so a failed downstream operation can rewind it.
type State struct {
	LastSnapshotText string
	HasSnapshot      bool
	LastCheckedAt    time.Time
	Status           Status
}

// State captures a source's current mutable fields.
func (r *Registry) State(id uuid.UUID) (State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, ok := r.byID[id]
	if !ok {
		return State{}, ErrSourceNotFound
	}
	return State{
		LastSnapshotText: source.LastSnapshotText,
		HasSnapshot:      source.HasSnapshot,
		LastCheckedAt:    source.LastCheckedAt,
		Status:           source.Status,
	}, nil
}

// Restore rewinds a source to a previously captured state. A no-op for
// an unknown id.
func (r *Registry) Restore(id uuid.UUID, state State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	source, ok := r.byID[id]
	if !ok {
		return
	}
	source.LastSnapshotText = state.LastSnapshotText
	source.HasSnapshot = state.HasSnapshot
	source.LastCheckedAt = state.LastCheckedAt
	source.Status = state.Status
}

// Load seeds the registry with previously persisted sources, keeping
// their order. Snapshot text is not persisted, so loaded sources await a
// fresh snapshot. Ids already present are skipped.
func (r *Registry) Load(sources []*Source) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range sources {
		if s == nil {
			continue
		}
		if _, ok := r.byID[s.ID]; ok {
			continue
		}
		src := *s
		r.sources = append(r.sources, &src)
		r.byID[src.ID] = &src
	}
}

// ApplySnapshot compares newText against the last known snapshot. On a
// difference it stores the snapshot, marks the source new, and reports
// changed=true so the caller can ingest a synthetic document. An identical
// snapshot only bumps the check time and leaves status untouched.
func (r *Registry) ApplySnapshot(id uuid.UUID, newText string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	source, ok := r.byID[id]
	if !ok {
		return false, ErrSourceNotFound
	}

	source.LastCheckedAt = time.Now()

	if source.HasSnapshot && source.LastSnapshotText == newText {
		return false, nil
	}

	source.LastSnapshotText = newText
	source.HasSnapshot = true
	source.Status = StatusNew

	return true, nil
}

// MarkReviewed transitions a source to reviewed. No other component sets
// this status.
func (r *Registry) MarkReviewed(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	source, ok := r.byID[id]
	if !ok {
		return ErrSourceNotFound
	}
	source.Status = StatusReviewed
	return nil
}

// Get returns a source by id.
func (r *Registry) Get(id uuid.UUID) (*Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, ok := r.byID[id]
	if !ok {
		return nil, ErrSourceNotFound
	}
	return source, nil
}

// List returns sources in registration order.
func (r *Registry) List() []*Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Len returns the number of monitored sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}
