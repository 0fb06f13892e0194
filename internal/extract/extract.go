package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/docstore"
)

// Kind classifies what sort of rule a statement expresses.
type Kind string

const (
	KindDeadline    Kind = "deadline"
	KindQuantity    Kind = "quantity"
	KindObligation  Kind = "obligation"
	KindProhibition Kind = "prohibition"
	KindOther       Kind = "other"
)

// Polarity marks whether a normative statement requires/permits an action
// or forbids it.
type Polarity int

const (
	PolarityNeutral Polarity = 0
	PolarityPermits Polarity = 1
	PolarityForbids Polarity = -1
)

// Value is a normalized structured value carried by a statement: a
// time-of-day, a duration in days, or a bare count.
type Value struct {
	Unit    string // "minute-of-day", "days", "count"
	Amount  float64
	Display string // the surface form, e.g. "10 PM", "two weeks"
}

// Statement is an atomic normative sentence extracted from a document.
// Derived data: recomputed whenever the owning document changes, never
// stored independently of it.
type Statement struct {
	ID           uuid.UUID
	DocumentID   uuid.UUID
	DocumentName string
	DocumentSeq  int
	Position     int
	Text         string
	Kind         Kind
	Polarity     Polarity
	Normalized   *Value
	Tokens       []string

	// Document-level attributes stamped onto every statement so the
	// matcher can weigh authority without re-reading the document.
	Authority   int
	Superseding bool
}

var (
	clockTimeRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\.?\b`)
	durationRe  = regexp.MustCompile(`(?i)\b(a|an|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|\d+)\s+(day|week|month|year)s?\b`)
	percentRe   = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:%|percent)`)
	boundRe     = regexp.MustCompile(`(?i)\b(?:minimum|maximum|at least|at most|no more than|no fewer than)\s+(?:of\s+)?(\d+(?:\.\d+)?)`)
)

var prohibitionCues = []string{
	"must not", "shall not", "may not", "cannot", "can not",
	"prohibited", "forbidden", "banned", "not allowed", "not permitted",
}

var permissionCues = []string{
	"is allowed", "are allowed", "is permitted", "are permitted",
	"may ", "can ", "extensions can be requested",
}

var obligationCues = []string{
	"notice", "must", "shall", "required", "require", "needs to", "need to",
}

var deadlineCues = []string{
	"deadline", "due date", "due by", "due on", "no later than",
}

var contractCues = []string{"contract", "agreement", "binding"}

var supersessionCues = []string{
	"supersede", "supersedes", "takes precedence", "take precedence",
	"overrides", "prevails over",
}

// Extract splits a document into statements and classifies each one.
// Pure function of the document: identical input yields identical
// statements in identical order, with deterministic ids.
func Extract(doc *docstore.Document) []*Statement {
	sentences := splitSentences(doc.Text)
	authority, superseding := documentAuthority(doc.Name, doc.Text)

	statements := make([]*Statement, 0, len(sentences))
	for i, sentence := range sentences {
		kind, polarity, value := classify(sentence)

		statements = append(statements, &Statement{
			ID:           statementID(doc.ID, i, sentence),
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			DocumentSeq:  doc.Seq,
			Position:     i,
			Text:         sentence,
			Kind:         kind,
			Polarity:     polarity,
			Normalized:   value,
			Tokens:       Tokenize(sentence),
			Authority:    authority,
			Superseding:  superseding,
		})
	}

	return statements
}

// ExtractAll extracts statements from every document, in document
// ingestion order.
func ExtractAll(docs []*docstore.Document) []*Statement {
	var statements []*Statement
	for _, doc := range docs {
		statements = append(statements, Extract(doc)...)
	}
	return statements
}

// statementID derives a stable id from the owning document and the
// statement's position and text, so repeated extraction agrees with itself.
func statementID(docID uuid.UUID, position int, text string) uuid.UUID {
	return uuid.NewSHA1(docID, []byte(strconv.Itoa(position)+":"+text))
}

// splitSentences breaks text into sentence-like units. A boundary is
// terminal punctuation followed by whitespace or end-of-text, which keeps
// decimals like "70.5" intact.
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		atEnd := i == len(runes)-1
		if !atEnd && !isSpace(runes[i+1]) {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

// classify assigns a kind via keyword and pattern heuristics. Statements
// matching no pattern are kept as KindOther; the matcher excludes those
// from pairing but reports may still show them as context.
func classify(sentence string) (Kind, Polarity, *Value) {
	lower := strings.ToLower(sentence)

	if containsAny(lower, prohibitionCues) {
		return KindProhibition, PolarityForbids, nil
	}

	if v := clockValue(sentence, lower); v != nil || containsAny(lower, deadlineCues) {
		return KindDeadline, PolarityNeutral, v
	}

	if m := durationRe.FindStringSubmatch(sentence); m != nil && containsAny(lower, obligationCues) {
		return KindObligation, PolarityPermits, durationValue(m)
	}

	if v := quantityValue(sentence); v != nil {
		return KindQuantity, PolarityNeutral, v
	}

	if containsAny(lower, obligationCues) || containsAny(lower, permissionCues) {
		return KindObligation, PolarityPermits, nil
	}

	return KindOther, PolarityNeutral, nil
}

// clockValue normalizes a time-of-day mention to minutes past midnight.
// "midnight" maps to 1440 (end of day) and "noon" to 720, so "before
// midnight" sorts after every clock time of the same day.
func clockValue(sentence, lower string) *Value {
	if m := clockTimeRe.FindStringSubmatch(sentence); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour > 12 || minute > 59 {
			return nil
		}
		if hour == 12 {
			hour = 0
		}
		if strings.EqualFold(m[3], "p") {
			hour += 12
		}
		return &Value{
			Unit:    "minute-of-day",
			Amount:  float64(hour*60 + minute),
			Display: strings.TrimSpace(m[0]),
		}
	}
	if strings.Contains(lower, "midnight") {
		return &Value{Unit: "minute-of-day", Amount: 1440, Display: "midnight"}
	}
	if strings.Contains(lower, "noon") {
		return &Value{Unit: "minute-of-day", Amount: 720, Display: "noon"}
	}
	return nil
}

// durationValue normalizes a duration phrase to days.
func durationValue(m []string) *Value {
	count := numberWord(strings.ToLower(m[1]))

	var unitDays float64
	switch strings.ToLower(m[2]) {
	case "day":
		unitDays = 1
	case "week":
		unitDays = 7
	case "month":
		unitDays = 30
	case "year":
		unitDays = 365
	}

	return &Value{
		Unit:    "days",
		Amount:  count * unitDays,
		Display: strings.TrimSpace(m[0]),
	}
}

func quantityValue(sentence string) *Value {
	if m := percentRe.FindStringSubmatch(sentence); m != nil {
		amount, _ := strconv.ParseFloat(m[1], 64)
		return &Value{Unit: "count", Amount: amount, Display: strings.TrimSpace(m[0])}
	}
	if m := boundRe.FindStringSubmatch(sentence); m != nil {
		amount, _ := strconv.ParseFloat(m[1], 64)
		return &Value{Unit: "count", Amount: amount, Display: strings.TrimSpace(m[0])}
	}
	return nil
}

func numberWord(w string) float64 {
	words := map[string]float64{
		"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4,
		"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
		"eleven": 11, "twelve": 12,
	}
	if n, ok := words[w]; ok {
		return n
	}
	n, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return 0
	}
	return n
}

// documentAuthority derives the document's authority tier and whether it
// claims to supersede other policies. Contract-grade documents outrank
// handbooks and guidelines.
func documentAuthority(name, text string) (int, bool) {
	lower := strings.ToLower(name + " " + text)

	tier := 1
	if containsAny(lower, contractCues) {
		tier = 2
	}

	return tier, containsAny(lower, supersessionCues)
}

func containsAny(lower string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer for log output.
func (s *Statement) String() string {
	return fmt.Sprintf("%s[%d] %s: %q", s.DocumentName, s.Position, s.Kind, s.Text)
}
