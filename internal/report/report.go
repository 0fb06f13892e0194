package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/match"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/pkg/models"
)

// ErrEmptyReport signals an export attempt on a report that covers no
// analysis. A precondition violation, not a crash.
var ErrEmptyReport = errors.New("report covers no analyzed documents")

// Report is the stable, ordered view of one analysis run's conflicts.
type Report struct {
	ID            uuid.UUID
	CreatedAt     time.Time
	DocumentCount int
	Conflicts     []*match.Conflict
}

// New builds a report from raw matcher output: conflicts are deduplicated
// and ordered via Build.
func New(conflicts []*match.Conflict, documentCount int) *Report {
	return &Report{
		ID:            uuid.New(),
		CreatedAt:     time.Now(),
		DocumentCount: documentCount,
		Conflicts:     Build(conflicts),
	}
}

// Build deduplicates and orders raw conflicts. Conflicts referencing the
// same unordered document pair with the same type collapse to the
// highest-severity instance. Output is ordered by severity descending,
// ties broken by the extraction order of the underlying statements.
// Pure and idempotent: same input, same output.
func Build(conflicts []*match.Conflict) []*match.Conflict {
	type key struct {
		docLo, docHi string
		conflictType match.ConflictType
	}

	index := make(map[key]int)
	deduped := make([]*match.Conflict, 0, len(conflicts))

	for _, c := range conflicts {
		if c == nil {
			continue
		}
		lo, hi := c.Statement1.DocumentID.String(), c.Statement2.DocumentID.String()
		if lo > hi {
			lo, hi = hi, lo
		}
		k := key{docLo: lo, docHi: hi, conflictType: c.Type}

		if i, seen := index[k]; seen {
			if match.SeverityWeight(c.Severity) > match.SeverityWeight(deduped[i].Severity) {
				deduped[i] = c
			}
			continue
		}
		index[k] = len(deduped)
		deduped = append(deduped, c)
	}

	// The matcher emits conflicts grouped by rule, not in extraction
	// order, so ties need an explicit secondary key: the position of the
	// pair's earliest statement.
	sort.SliceStable(deduped, func(i, j int) bool {
		wi := match.SeverityWeight(deduped[i].Severity)
		wj := match.SeverityWeight(deduped[j].Severity)
		if wi != wj {
			return wi > wj
		}
		iSeq, iPos := extractionOrder(deduped[i])
		jSeq, jPos := extractionOrder(deduped[j])
		if iSeq != jSeq {
			return iSeq < jSeq
		}
		return iPos < jPos
	})

	return deduped
}

// extractionOrder locates the conflict's earliest statement in extraction
// order: document ingestion sequence, then position within the document.
func extractionOrder(c *match.Conflict) (int, int) {
	first := c.Statement1
	if s := c.Statement2; s.DocumentSeq < first.DocumentSeq ||
		(s.DocumentSeq == first.DocumentSeq && s.Position < first.Position) {
		first = s
	}
	return first.DocumentSeq, first.Position
}

// titles maps conflict types to human report headings.
var titles = map[match.ConflictType]string{
	match.TypeDeadlineMismatch:     "Deadline discrepancy",
	match.TypeNoticePeriodMismatch: "Notice period contradiction",
	match.TypePermissionConflict:   "Permission conflict",
	match.TypeQuantityMismatch:     "Quantity discrepancy",
}

// ModelConflicts converts the ordered conflicts to their JSON-facing form.
func (r *Report) ModelConflicts() []models.Conflict {
	out := make([]models.Conflict, len(r.Conflicts))
	for i, c := range r.Conflicts {
		ids := c.StatementIDs()
		docs := c.DocumentNames()
		out[i] = models.Conflict{
			ID:           c.ID.String(),
			Documents:    []string{docs[0], docs[1]},
			StatementIDs: []string{ids[0].String(), ids[1].String()},
			Conflict:     titles[c.Type],
			Type:         string(c.Type),
			Description:  c.Description,
			Severity:     string(c.Severity),
			Suggestion:   c.Suggestion,
		}
	}
	return out
}

// ExportText renders the report as a plain-text artifact. Side-effect
// free; rendering an empty report fails with ErrEmptyReport.
func (r *Report) ExportText() ([]byte, error) {
	if r == nil || r.DocumentCount == 0 {
		return nil, ErrEmptyReport
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Conflict Analysis Report\n")
	fmt.Fprintf(&buf, "Generated: %s\n", r.CreatedAt.Format("January 2, 2006"))
	fmt.Fprintf(&buf, "Documents analyzed: %d\n", r.DocumentCount)
	fmt.Fprintf(&buf, "Conflicts found: %d\n\n", len(r.Conflicts))

	if len(r.Conflicts) == 0 {
		buf.WriteString("No conflicts detected.\n")
		return buf.Bytes(), nil
	}

	for i, c := range r.Conflicts {
		docs := c.DocumentNames()
		fmt.Fprintf(&buf, "%d. %s [%s]\n", i+1, titles[c.Type], c.Severity)
		fmt.Fprintf(&buf, "   %s\n", c.Description)
		fmt.Fprintf(&buf, "   Suggested resolution: %s\n", c.Suggestion)
		fmt.Fprintf(&buf, "   Affected documents: %s, %s\n\n", docs[0], docs[1])
	}

	return buf.Bytes(), nil
}

// ExportJSON renders the report as a JSON artifact.
func (r *Report) ExportJSON() ([]byte, error) {
	if r == nil || r.DocumentCount == 0 {
		return nil, ErrEmptyReport
	}

	payload := struct {
		ID            string            `json:"id"`
		GeneratedAt   string            `json:"generated_at"`
		DocumentCount int               `json:"document_count"`
		Conflicts     []models.Conflict `json:"conflicts"`
	}{
		ID:            r.ID.String(),
		GeneratedAt:   r.CreatedAt.Format(time.RFC3339),
		DocumentCount: r.DocumentCount,
		Conflicts:     r.ModelConflicts(),
	}

	return json.MarshalIndent(payload, "", "  ")
}
