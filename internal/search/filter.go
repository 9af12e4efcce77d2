package search

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match is a title that satisfied a query.
type Match struct {
	Index    int // Index in the source slice
	Distance int // Summed Levenshtein distance of the query words (lower = closer)
}

// Titles returns the titles matching query, in source order.
//
// The query is split into words; every word must appear in the title as a
// case-insensitive, accent-insensitive subsequence. Word order does not
// matter ("boot disk" matches "Disk boot order"). An empty query matches
// nothing.
func Titles(query string, titles []string) []Match {
	words := tokenize(query)
	if len(words) == 0 {
		return nil
	}

	var matches []Match
	for i, title := range titles {
		if dist, ok := matchAll(words, title); ok {
			matches = append(matches, Match{Index: i, Distance: dist})
		}
	}
	return matches
}

func matchAll(words []string, title string) (int, bool) {
	total := 0
	for _, w := range words {
		d := fuzzy.RankMatchNormalizedFold(w, title)
		if d < 0 {
			return 0, false
		}
		total += d
	}
	return total, true
}

// tokenize splits text into lowercase runs of letters and digits.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
