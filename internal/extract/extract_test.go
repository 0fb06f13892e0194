package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/docstore"
)

func testDocument(t *testing.T, name, text string) *docstore.Document {
	t.Helper()
	store := docstore.NewStore()
	doc, err := store.Ingest(text, name, docstore.SourceUpload)
	require.NoError(t, err)
	return doc
}

func TestExtractDeterministic(t *testing.T) {
	doc := testDocument(t, "Policy A", "Submit before 10 PM. Employees must provide two weeks notice.")

	first := Extract(doc)
	second := Extract(doc)

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].Kind, second[i].Kind)
	}
}

func TestExtractClassifiesDeadline(t *testing.T) {
	doc := testDocument(t, "Policy A", "Submit the report before 10 PM.")

	statements := Extract(doc)
	require.Len(t, statements, 1)

	s := statements[0]
	assert.Equal(t, KindDeadline, s.Kind)
	require.NotNil(t, s.Normalized)
	assert.Equal(t, "minute-of-day", s.Normalized.Unit)
	assert.Equal(t, float64(22*60), s.Normalized.Amount)
}

func TestExtractNormalizesMidnight(t *testing.T) {
	doc := testDocument(t, "Policy B", "The deadline is midnight.")

	statements := Extract(doc)
	require.Len(t, statements, 1)

	s := statements[0]
	assert.Equal(t, KindDeadline, s.Kind)
	require.NotNil(t, s.Normalized)
	assert.Equal(t, float64(1440), s.Normalized.Amount)
	assert.Equal(t, "midnight", s.Normalized.Display)
}

func TestExtractClassifiesNoticePeriod(t *testing.T) {
	doc := testDocument(t, "Handbook", "Employees must provide two weeks notice before resignation.")

	statements := Extract(doc)
	require.Len(t, statements, 1)

	s := statements[0]
	assert.Equal(t, KindObligation, s.Kind)
	assert.Equal(t, PolarityPermits, s.Polarity)
	require.NotNil(t, s.Normalized)
	assert.Equal(t, "days", s.Normalized.Unit)
	assert.Equal(t, float64(14), s.Normalized.Amount)
}

func TestExtractClassifiesProhibition(t *testing.T) {
	doc := testDocument(t, "Security Policy", "Employees must not share customer data.")

	statements := Extract(doc)
	require.Len(t, statements, 1)
	assert.Equal(t, KindProhibition, statements[0].Kind)
	assert.Equal(t, PolarityForbids, statements[0].Polarity)
	assert.Nil(t, statements[0].Normalized)
}

func TestExtractClassifiesQuantity(t *testing.T) {
	doc := testDocument(t, "Attendance Policy", "Attendance of at least 75% is expected.")

	statements := Extract(doc)
	require.Len(t, statements, 1)

	s := statements[0]
	assert.Equal(t, KindQuantity, s.Kind)
	require.NotNil(t, s.Normalized)
	assert.Equal(t, "count", s.Normalized.Unit)
	assert.Equal(t, float64(75), s.Normalized.Amount)
}

func TestExtractContractAuthority(t *testing.T) {
	doc := testDocument(t, "Contract",
		"The contract requires one month notice for termination. This supersedes any other policy.")

	statements := Extract(doc)
	require.Len(t, statements, 2)

	// Authority and supersession are document-level: every statement
	// carries them, including the one without supersession wording.
	for _, s := range statements {
		assert.Equal(t, 2, s.Authority)
		assert.True(t, s.Superseding)
	}

	notice := statements[0]
	assert.Equal(t, KindObligation, notice.Kind)
	require.NotNil(t, notice.Normalized)
	assert.Equal(t, float64(30), notice.Normalized.Amount)
}

func TestExtractUnclassifiedIsOther(t *testing.T) {
	doc := testDocument(t, "Notes", "The office kitchen was repainted last year.")

	statements := Extract(doc)
	require.Len(t, statements, 1)
	assert.Equal(t, KindOther, statements[0].Kind)
}

func TestSplitSentencesKeepsDecimals(t *testing.T) {
	doc := testDocument(t, "Policy", "Attendance of at least 70.5% is required. No exceptions!")

	statements := Extract(doc)
	require.Len(t, statements, 2)
	assert.Equal(t, "Attendance of at least 70.5% is required.", statements[0].Text)
	assert.Equal(t, "No exceptions!", statements[1].Text)
}

func TestExtractAllPreservesIngestionOrder(t *testing.T) {
	store := docstore.NewStore()
	a, err := store.Ingest("Submit before 10 PM.", "A", docstore.SourceUpload)
	require.NoError(t, err)
	b, err := store.Ingest("Deadline is midnight.", "B", docstore.SourceUpload)
	require.NoError(t, err)

	statements := ExtractAll([]*docstore.Document{a, b})
	require.Len(t, statements, 2)
	assert.Equal(t, a.ID, statements[0].DocumentID)
	assert.Equal(t, b.ID, statements[1].DocumentID)
	assert.Less(t, statements[0].DocumentSeq, statements[1].DocumentSeq)
}

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	tokens := Tokenize("The report is due by 10 PM on Friday.")
	assert.Equal(t, []string{"report", "due", "friday"}, tokens)
}

func TestTermVectorDeterministic(t *testing.T) {
	tokens := Tokenize("Employees must provide two weeks notice.")
	v1 := TermVector(tokens)
	v2 := TermVector(tokens)

	require.Len(t, v1, TermVectorDim)
	assert.Equal(t, v1, v2)

	var sum float32
	for _, x := range v1 {
		sum += x
	}
	assert.Equal(t, float32(len(tokens)), sum)
}
