package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/docstore"
	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/extract"
)

func extractDocs(t *testing.T, texts map[string]string, order []string) []*extract.Statement {
	t.Helper()
	store := docstore.NewStore()
	docs := make([]*docstore.Document, 0, len(order))
	for _, name := range order {
		doc, err := store.Ingest(texts[name], name, docstore.SourceUpload)
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	return extract.ExtractAll(docs)
}

func newTestMatcher() *HeuristicMatcher {
	return NewHeuristicMatcher(DefaultConfig(), nil)
}

func TestMatchDeadlineMismatch(t *testing.T) {
	statements := extractDocs(t, map[string]string{
		"Project Guidelines": "Submit the final report before 10 PM.",
		"Email Update":       "The submission deadline is midnight.",
	}, []string{"Project Guidelines", "Email Update"})

	conflicts, err := newTestMatcher().Match(context.Background(), statements)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, TypeDeadlineMismatch, c.Type)
	assert.Equal(t, SeverityHigh, c.Severity)
	assert.Contains(t, c.Suggestion, "midnight")
	assert.ElementsMatch(t, []string{"Project Guidelines", "Email Update"}, c.DocumentNames())
}

func TestMatchNoticePeriodCriticalWithSupersession(t *testing.T) {
	statements := extractDocs(t, map[string]string{
		"Employee Handbook": "Employees must provide two weeks notice before resignation.",
		"Contract":          "The contract requires one month notice for termination. This supersedes any other policy.",
	}, []string{"Employee Handbook", "Contract"})

	conflicts, err := newTestMatcher().Match(context.Background(), statements)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, TypeNoticePeriodMismatch, c.Type)
	assert.Equal(t, SeverityCritical, c.Severity)
	assert.Contains(t, c.Suggestion, "Contract takes precedence")
}

func TestMatchPermissionConflict(t *testing.T) {
	statements := extractDocs(t, map[string]string{
		"Security Policy": "Employees must not share customer data.",
		"Sales Playbook":  "Staff may share customer data with partners.",
	}, []string{"Security Policy", "Sales Playbook"})

	conflicts, err := newTestMatcher().Match(context.Background(), statements)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, TypePermissionConflict, conflicts[0].Type)
	assert.Equal(t, SeverityHigh, conflicts[0].Severity)
}

func TestMatchEqualValuesAreCompatible(t *testing.T) {
	statements := extractDocs(t, map[string]string{
		"Policy A": "Submit the report before 10 PM.",
		"Policy B": "The submission deadline is 10 PM.",
	}, []string{"Policy A", "Policy B"})

	conflicts, err := newTestMatcher().Match(context.Background(), statements)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestMatchSkipsSameDocumentPairs(t *testing.T) {
	statements := extractDocs(t, map[string]string{
		"Policy A": "Submit the report before 10 PM. The submission deadline is midnight.",
	}, []string{"Policy A"})

	conflicts, err := newTestMatcher().Match(context.Background(), statements)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestMatchUnrelatedSubjectsDoNotConflict(t *testing.T) {
	statements := extractDocs(t, map[string]string{
		"Cafeteria Notice": "Lunch service ends at 2 PM.",
		"Parking Policy":   "The garage closes at 11 PM.",
	}, []string{"Cafeteria Notice", "Parking Policy"})

	conflicts, err := newTestMatcher().Match(context.Background(), statements)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestMatchStatementCeiling(t *testing.T) {
	statements := extractDocs(t, map[string]string{
		"Policy A": "Submit before 10 PM. Deadline is midnight. Reports are due at noon.",
	}, []string{"Policy A"})
	require.Greater(t, len(statements), 2)

	m := NewHeuristicMatcher(Config{MaxStatements: 2, MinSubjectSimilarity: 0.35}, nil)
	_, err := m.Match(context.Background(), statements)
	require.ErrorIs(t, err, ErrInputTooLarge)
}

func TestMatchDeterministicOrder(t *testing.T) {
	texts := map[string]string{
		"Policy A": "Submit before 10 PM. Attendance of at least 75% is required.",
		"Policy B": "The submission deadline is midnight. Attendance of at least 80% is required.",
	}
	order := []string{"Policy A", "Policy B"}

	first, err := newTestMatcher().Match(context.Background(), extractDocs(t, texts, order))
	require.NoError(t, err)
	second, err := newTestMatcher().Match(context.Background(), extractDocs(t, texts, order))
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Type, second[i].Type)
		assert.Equal(t, first[i].Description, second[i].Description)
	}
}

func TestNewConflictRejectsSameDocument(t *testing.T) {
	statements := extractDocs(t, map[string]string{
		"Policy A": "Submit before 10 PM. Deadline is midnight.",
	}, []string{"Policy A"})
	require.Len(t, statements, 2)

	c := newConflict(TypeDeadlineMismatch, SeverityHigh, "d", "s", statements[0], statements[1])
	assert.Nil(t, c)
}

func TestSameSubjectByCategory(t *testing.T) {
	statements := extractDocs(t, map[string]string{
		"A": "Submit the form early.",
		"B": "The submission deadline matters.",
	}, []string{"A", "B"})
	require.Len(t, statements, 2)

	assert.True(t, sameSubject(statements[0], statements[1], 0.99))
}

func TestSubjectSimilarityIdenticalText(t *testing.T) {
	statements := extractDocs(t, map[string]string{
		"A": "Employees must provide two weeks notice.",
		"B": "Employees must provide two weeks notice.",
	}, []string{"A", "B"})
	require.Len(t, statements, 2)

	assert.InDelta(t, 1.0, SubjectSimilarity(statements[0], statements[1]), 1e-9)
}
