package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func indexes(ms []Match) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.Index
	}
	return out
}

func TestTitles(t *testing.T) {
	titles := []string{
		"Install the toolchain",
		"Configure boot disk",
		"Disk boot order",
		"Résumé export",
		"Rotate logs",
	}

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"empty query", "", nil},
		{"punctuation only", " -- ", nil},
		{"single word", "boot", []int{1, 2}},
		{"word order ignored", "disk boot", []int{1, 2}},
		{"case folded", "INSTALL", []int{0}},
		{"subsequence", "tlchn", []int{0}},
		{"accents normalized", "resume", []int{3}},
		{"every word required", "boot logs", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := indexes(Titles(tt.query, titles))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestTitles_KeepsSourceOrder(t *testing.T) {
	got := Titles("go", []string{"Zig or Go", "Go basics", "Goroutines"})
	assert.Equal(t, []int{0, 1, 2}, indexes(got))
}
