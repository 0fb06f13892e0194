package match

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/extract"
)

// ErrInputTooLarge is returned when the statement count exceeds the
// configured ceiling. Pairwise matching is quadratic, so oversized input is
// rejected at the boundary instead of left to run unbounded.
var ErrInputTooLarge = errors.New("statement count exceeds analysis ceiling")

// ConflictType labels the rule that produced a conflict.
type ConflictType string

const (
	TypeDeadlineMismatch     ConflictType = "deadline-mismatch"
	TypeNoticePeriodMismatch ConflictType = "notice-period-mismatch"
	TypePermissionConflict   ConflictType = "permission-conflict"
	TypeQuantityMismatch     ConflictType = "quantity-mismatch"
)

// Severity ranks how serious a conflict is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SeverityWeight orders severities for sorting and tie-breaks.
func SeverityWeight(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// maxSeverity returns the higher-ranked of two severities. When several
// heuristics apply to one pair, the highest severity wins.
func maxSeverity(a, b Severity) Severity {
	if SeverityWeight(b) > SeverityWeight(a) {
		return b
	}
	return a
}

// Conflict is a detected contradiction between two statements drawn from
// two distinct documents.
type Conflict struct {
	ID          uuid.UUID
	Type        ConflictType
	Severity    Severity
	Description string
	Suggestion  string
	Statement1  *extract.Statement
	Statement2  *extract.Statement
}

// StatementIDs returns the ids of the statements involved.
func (c *Conflict) StatementIDs() [2]uuid.UUID {
	return [2]uuid.UUID{c.Statement1.ID, c.Statement2.ID}
}

// DocumentNames returns the names of the two source documents.
func (c *Conflict) DocumentNames() [2]string {
	return [2]string{c.Statement1.DocumentName, c.Statement2.DocumentName}
}

// newConflict builds a conflict, enforcing the invariant that the two
// statements come from distinct documents. A single-document pair is a
// caller bug and yields nil.
func newConflict(t ConflictType, sev Severity, desc, suggestion string, s1, s2 *extract.Statement) *Conflict {
	if s1 == nil || s2 == nil || s1.DocumentID == s2.DocumentID {
		return nil
	}
	return &Conflict{
		ID:          conflictID(t, s1, s2),
		Type:        t,
		Severity:    sev,
		Description: desc,
		Suggestion:  suggestion,
		Statement1:  s1,
		Statement2:  s2,
	}
}

// conflictID derives a stable id from the pair and rule, keeping matcher
// output deterministic for identical input.
func conflictID(t ConflictType, s1, s2 *extract.Statement) uuid.UUID {
	return uuid.NewSHA1(s1.ID, append(s2.ID[:], []byte(t)...))
}

// Matcher classifies statement pairs across documents. The heuristic
// implementation lives in this package; a semantic model can replace it
// without touching the pipeline.
type Matcher interface {
	Match(ctx context.Context, statements []*extract.Statement) ([]*Conflict, error)
}
