package extract

import (
	"hash/fnv"
	"strings"
	"unicode"
)

const minTokenLength = 3

// TermVectorDim is the dimensionality of hashed term-frequency vectors.
// Tokens are hashed into a fixed-size bucket space so vectors from any two
// statements are directly comparable.
const TermVectorDim = 64

// Tokenize lowercases the text, splits on non-alphanumeric runes and drops
// stop words and short tokens.
func Tokenize(text string) []string {
	text = strings.ToLower(text)

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	result := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) >= minTokenLength && !stopWords[word] {
			result = append(result, word)
		}
	}

	return result
}

// TermVector maps tokens into a hashed term-frequency vector of
// TermVectorDim buckets. Deterministic for a given token sequence.
func TermVector(tokens []string) []float32 {
	vec := make([]float32, TermVectorDim)
	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%TermVectorDim]++
	}
	return vec
}

var stopWords = buildStopWords()

func buildStopWords() map[string]bool {
	words := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"has", "have", "he", "in", "is", "it", "its", "of", "on", "or",
		"she", "that", "the", "they", "this", "to", "was", "were", "will",
		"with", "you", "your", "we", "our", "their", "them", "there", "these",
		"those", "been", "being", "had", "having", "do", "does", "did", "doing",
		"would", "could", "should", "may", "might", "must", "can", "cannot",
		"about", "above", "after", "again", "against", "all", "am", "any",
		"because", "before", "below", "between", "both", "but", "during",
		"each", "few", "further", "here", "how", "if", "into", "just", "more",
		"most", "no", "nor", "not", "now", "only", "other", "out", "own",
		"same", "so", "some", "such", "than", "then", "through", "too", "under",
		"until", "up", "very", "what", "when", "where", "which", "while", "who",
		"whom", "why", "also", "however", "therefore", "thus", "hence", "yet",
	}

	result := make(map[string]bool, len(words))
	for _, w := range words {
		result[w] = true
	}
	return result
}
