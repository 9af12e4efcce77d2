// Package stepkey normalizes the loosely formatted step numbers authors give
// procedures ("1104", "５-０９", "11・4", "5.9") into a sortable (major, minor)
// pair.
package stepkey

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// UncategorizedLabel is the section label for keys that could not be parsed.
const UncategorizedLabel = "uncategorized"

// Key is the canonical ordering key of a procedure.
type Key struct {
	Major     int
	Minor     int
	Canonical string // "{major}-{minor:02d}"
}

// Patterns are tried in order against the whole normalized string.
var (
	fourDigits  = regexp.MustCompile(`^(\d{2})(\d{2})$`)
	threeDigits = regexp.MustCompile(`^(\d)(\d{2})$`)
	twoDigits   = regexp.MustCompile(`^(\d)(\d)$`)
	separated   = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})$`)

	patterns = []*regexp.Regexp{fourDigits, threeDigits, twoDigits, separated}
)

// separators are look-alikes authors use between major and minor.
var separators = map[rune]bool{
	'-': true, '_': true,
	'‐': true, '‑': true, '‒': true, '–': true, '—': true, '―': true,
	'−': true, // minus sign
	'ー': true, // katakana prolonged sound mark
	'/': true, '\\': true,
	'·': true, '・': true, // middle dots
	'.': true, ',': true,
	'、': true, // ideographic comma
}

// New builds a key from its parts.
func New(major, minor int) Key {
	return Key{Major: major, Minor: minor, Canonical: fmt.Sprintf("%d-%02d", major, minor)}
}

// Parse converts a raw step number into a Key. Input that matches none of
// the known shapes yields the uncategorized key {0, 0}; Parse never fails.
//
// Three-digit runs are read as a single-digit major and two-digit minor
// ("509" is 5-09, never 50-9).
func Parse(raw string) Key {
	s := normalize(raw)
	for _, re := range patterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		major, _ := strconv.Atoi(m[1])
		minor, _ := strconv.Atoi(m[2])
		return New(major, minor)
	}
	return New(0, 0)
}

// normalize folds full-width forms, maps separators to '-', drops
// whitespace, and collapses separator runs.
func normalize(raw string) string {
	folded := width.Fold.String(raw)

	var b strings.Builder
	b.Grow(len(folded))
	lastDash := false
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			continue
		case separators[r]:
			if !lastDash {
				b.WriteByte('-')
			}
			lastDash = true
		default:
			b.WriteRune(r)
			lastDash = false
		}
	}
	return strings.Trim(b.String(), "-")
}

// Uncategorized reports whether the key came from unparsable input.
func (k Key) Uncategorized() bool {
	return k.Major == 0 && k.Minor == 0
}

// Less orders keys by major then minor.
func (k Key) Less(other Key) bool {
	if k.Major != other.Major {
		return k.Major < other.Major
	}
	return k.Minor < other.Minor
}

// Compare returns -1, 0 or 1 in (major, minor) order.
func (k Key) Compare(other Key) int {
	switch {
	case k.Less(other):
		return -1
	case other.Less(k):
		return 1
	default:
		return 0
	}
}

// Section returns the grouping label used in listings.
func (k Key) Section() string {
	if k.Uncategorized() {
		return UncategorizedLabel
	}
	return strconv.Itoa(k.Major)
}

func (k Key) String() string {
	return k.Canonical
}
