package match

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/extract"
)

// Config holds matcher tuning knobs.
type Config struct {
	// MaxStatements caps total statements per match call.
	MaxStatements int
	// MinSubjectSimilarity is the term-vector cosine threshold used when
	// no shared event category links a pair.
	MinSubjectSimilarity float64
}

// DefaultConfig returns default matcher configuration.
func DefaultConfig() Config {
	return Config{
		MaxStatements:        2000,
		MinSubjectSimilarity: 0.35,
	}
}

// HeuristicMatcher is the rule-based Matcher implementation. It compares
// statements of the same kind pairwise across distinct documents and emits
// one Conflict per contradictory pair.
type HeuristicMatcher struct {
	config Config
	logger *zap.Logger
}

// NewHeuristicMatcher creates a matcher with the given config.
func NewHeuristicMatcher(config Config, logger *zap.Logger) *HeuristicMatcher {
	if config.MaxStatements <= 0 {
		config.MaxStatements = DefaultConfig().MaxStatements
	}
	if config.MinSubjectSimilarity <= 0 {
		config.MinSubjectSimilarity = DefaultConfig().MinSubjectSimilarity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeuristicMatcher{config: config, logger: logger}
}

// Match runs every rule over the statement set. Statements of kind "other"
// never participate. A malformed pair is logged and skipped; one bad pair
// must not void the rest of the analysis.
func (m *HeuristicMatcher) Match(ctx context.Context, statements []*extract.Statement) ([]*Conflict, error) {
	if len(statements) > m.config.MaxStatements {
		return nil, fmt.Errorf("%w: %d statements, ceiling %d", ErrInputTooLarge, len(statements), m.config.MaxStatements)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byKind := make(map[extract.Kind][]*extract.Statement)
	for _, s := range statements {
		if s == nil || s.Kind == extract.KindOther {
			continue
		}
		byKind[s.Kind] = append(byKind[s.Kind], s)
	}
	for _, group := range byKind {
		sortStatements(group)
	}

	conflicts := make([]*Conflict, 0)
	conflicts = append(conflicts, m.matchPairs(byKind[extract.KindDeadline], m.deadlinePair)...)
	conflicts = append(conflicts, m.matchPairs(byKind[extract.KindObligation], m.noticePair)...)
	conflicts = append(conflicts, m.matchPairs(byKind[extract.KindQuantity], m.quantityPair)...)
	conflicts = append(conflicts, m.matchPermissions(byKind[extract.KindProhibition], byKind[extract.KindObligation])...)

	return conflicts, nil
}

// sortStatements orders by extraction order: document ingestion sequence,
// then position within the document. Matching order, and therefore output
// order, is deterministic.
func sortStatements(group []*extract.Statement) {
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].DocumentSeq != group[j].DocumentSeq {
			return group[i].DocumentSeq < group[j].DocumentSeq
		}
		return group[i].Position < group[j].Position
	})
}

// matchPairs walks the upper triangle of a same-kind group, skipping pairs
// from the same document.
func (m *HeuristicMatcher) matchPairs(group []*extract.Statement, rule func(a, b *extract.Statement) *Conflict) []*Conflict {
	var conflicts []*Conflict
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			a, b := group[i], group[j]
			if a.DocumentID == b.DocumentID {
				continue
			}
			if c := rule(a, b); c != nil {
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts
}

// deadlinePair flags two deadline statements whose normalized times differ
// while governing the same event category. Identical normalized values are
// compatible; unrelated subjects are ignored.
func (m *HeuristicMatcher) deadlinePair(a, b *extract.Statement) *Conflict {
	if a.Normalized == nil || b.Normalized == nil {
		return nil
	}
	if a.Normalized.Unit != "minute-of-day" || b.Normalized.Unit != "minute-of-day" {
		m.skipPair(a, b, "deadline statement without time-of-day value")
		return nil
	}
	if a.Normalized.Amount == b.Normalized.Amount {
		return nil
	}
	if !sameSubject(a, b, m.config.MinSubjectSimilarity) {
		return nil
	}

	sev := SeverityHigh
	if a.Authority != b.Authority || a.Superseding || b.Superseding {
		sev = maxSeverity(sev, SeverityCritical)
	}

	later := a.Normalized
	if b.Normalized.Amount > a.Normalized.Amount {
		later = b.Normalized
	}

	return newConflict(
		TypeDeadlineMismatch,
		sev,
		describePair(a, b),
		fmt.Sprintf("Standardize the deadline across all documents to %s for consistency.", later.Display),
		a, b,
	)
}

// noticePair flags two obligation statements with differing normalized
// durations on the same subject. Legally-binding context upgrades the
// severity to critical.
func (m *HeuristicMatcher) noticePair(a, b *extract.Statement) *Conflict {
	if a.Normalized == nil || b.Normalized == nil {
		return nil
	}
	if a.Normalized.Unit != "days" || b.Normalized.Unit != "days" {
		m.skipPair(a, b, "obligation statement without duration value")
		return nil
	}
	if a.Normalized.Amount == b.Normalized.Amount {
		return nil
	}
	if !sameSubject(a, b, m.config.MinSubjectSimilarity) {
		return nil
	}

	sev := SeverityMedium
	if bindingContext(a) || bindingContext(b) {
		sev = maxSeverity(sev, SeverityCritical)
	}

	suggestion := fmt.Sprintf("Align the notice period in %s and %s to a single value.", a.DocumentName, b.DocumentName)
	if a.Authority != b.Authority {
		higher, lower := a, b
		if b.Authority > a.Authority {
			higher, lower = b, a
		}
		suggestion = fmt.Sprintf("Clarify that %s takes precedence over %s, or update both documents.", higher.DocumentName, lower.DocumentName)
	}

	return newConflict(TypeNoticePeriodMismatch, sev, describePair(a, b), suggestion, a, b)
}

// quantityPair flags differing numeric values on the same subject.
func (m *HeuristicMatcher) quantityPair(a, b *extract.Statement) *Conflict {
	if a.Normalized == nil || b.Normalized == nil {
		return nil
	}
	if a.Normalized.Amount == b.Normalized.Amount {
		return nil
	}
	if !sameSubject(a, b, m.config.MinSubjectSimilarity) {
		return nil
	}

	return newConflict(
		TypeQuantityMismatch,
		SeverityMedium,
		describePair(a, b),
		fmt.Sprintf("Reconcile the differing values %s and %s across documents.", a.Normalized.Display, b.Normalized.Display),
		a, b,
	)
}

// matchPermissions compares prohibitions against permitting or requiring
// statements from other documents: a negation-polarity mismatch on the
// same action phrase is a conflict.
func (m *HeuristicMatcher) matchPermissions(prohibitions, obligations []*extract.Statement) []*Conflict {
	var conflicts []*Conflict
	for _, p := range prohibitions {
		for _, o := range obligations {
			if p.DocumentID == o.DocumentID {
				continue
			}
			if o.Polarity != extract.PolarityPermits {
				continue
			}
			if !sameSubject(p, o, m.config.MinSubjectSimilarity) {
				continue
			}

			sev := SeverityHigh
			if p.Authority != o.Authority || p.Superseding || o.Superseding {
				sev = maxSeverity(sev, SeverityCritical)
			}

			c := newConflict(
				TypePermissionConflict,
				sev,
				describePair(p, o),
				fmt.Sprintf("Decide whether the action is permitted and update %s and %s to agree.", p.DocumentName, o.DocumentName),
				p, o,
			)
			if c != nil {
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts
}

// bindingContext reports whether a statement sits in legally-binding
// territory: contract-tier document, supersession language, or termination
// wording in the statement itself.
func bindingContext(s *extract.Statement) bool {
	if s.Authority >= 2 || s.Superseding {
		return true
	}
	for _, tok := range s.Tokens {
		if tok == "termination" || tok == "contract" || tok == "terminate" {
			return true
		}
	}
	return false
}

func describePair(a, b *extract.Statement) string {
	return fmt.Sprintf("%s states %q while %s states %q", a.DocumentName, a.Text, b.DocumentName, b.Text)
}

// skipPair records a defensively skipped pair. Unexpected statement shapes
// are bugs, not user errors, so they are logged rather than surfaced.
func (m *HeuristicMatcher) skipPair(a, b *extract.Statement, reason string) {
	m.logger.Warn("skipping statement pair",
		zap.String("reason", reason),
		zap.String("statement1", a.ID.String()),
		zap.String("statement2", b.ID.String()),
	)
}
