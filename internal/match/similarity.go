package match

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/SAIJASHAN/DREAMERS-KLH-BCH/internal/extract"
)

// SubjectSimilarity computes cosine similarity between the hashed
// term-frequency vectors of two statements. Returns a value in [0, 1]
// since term frequencies are non-negative.
func SubjectSimilarity(a, b *extract.Statement) float64 {
	return cosine(extract.TermVector(a.Tokens), extract.TermVector(b.Tokens))
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	af := make([]float64, len(a))
	bf := make([]float64, len(b))
	for i := range a {
		af[i] = float64(a[i])
		bf[i] = float64(b[i])
	}

	dot := floats.Dot(af, bf)
	magA := math.Sqrt(floats.Dot(af, af))
	magB := math.Sqrt(floats.Dot(bf, bf))

	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (magA * magB)
}

// eventCategories groups keywords that name the same governed event, so
// "Submit before 10 PM" and "Deadline is midnight" land in the same
// category even with zero token overlap.
var eventCategories = [][]string{
	{"submit", "submission", "deadline", "due"},
	{"notice", "termination", "resignation", "resign", "leaving"},
	{"attendance", "attend", "absence", "absent"},
	{"payment", "pay", "invoice", "refund"},
	{"privacy", "data", "confidential"},
}

// sameEventCategory reports whether both statements mention keywords of a
// shared event category. Keywords of four letters or more match as
// prefixes so inflected forms ("submitted", "submissions") count.
func sameEventCategory(a, b *extract.Statement) bool {
	for _, category := range eventCategories {
		if hitsCategory(a.Tokens, category) && hitsCategory(b.Tokens, category) {
			return true
		}
	}
	return false
}

func hitsCategory(tokens []string, category []string) bool {
	for _, tok := range tokens {
		for _, kw := range category {
			if tok == kw || (len(kw) >= 4 && strings.HasPrefix(tok, kw)) {
				return true
			}
		}
	}
	return false
}

// sameSubject is the gate deciding whether two statements govern the same
// thing: a shared event category, or sufficient term-vector similarity.
func sameSubject(a, b *extract.Statement, minSimilarity float64) bool {
	if sameEventCategory(a, b) {
		return true
	}
	return SubjectSimilarity(a, b) >= minSimilarity
}
