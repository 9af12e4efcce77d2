package domain

import "fmt"

// Domain identifies one of the three content collections. The value is the
// path segment used by the backend (lowercase plural).
type Domain string

const (
	DomainArticles   Domain = "articles"
	DomainSyntaxes   Domain = "syntaxes"
	DomainProcedures Domain = "procedures"
)

// Domains lists every content collection in display order.
var Domains = []Domain{DomainArticles, DomainSyntaxes, DomainProcedures}

// ParseDomain accepts the plural path form or the singular name.
func ParseDomain(s string) (Domain, error) {
	switch s {
	case "articles", "article":
		return DomainArticles, nil
	case "syntaxes", "syntax":
		return DomainSyntaxes, nil
	case "procedures", "procedure":
		return DomainProcedures, nil
	default:
		return "", fmt.Errorf("unknown content domain %q", s)
	}
}

// Singular returns the singular name used in request body keys
// (articleId, syntaxId, procedureId).
func (d Domain) Singular() string {
	switch d {
	case DomainArticles:
		return "article"
	case DomainSyntaxes:
		return "syntax"
	case DomainProcedures:
		return "procedure"
	default:
		return string(d)
	}
}

// IDKey returns the JSON key that carries an item id for this domain.
func (d Domain) IDKey() string {
	return d.Singular() + "Id"
}

// TargetType returns the review target tag for this domain.
func (d Domain) TargetType() TargetType {
	switch d {
	case DomainSyntaxes:
		return TargetSyntax
	case DomainProcedures:
		return TargetProcedure
	default:
		return TargetArticle
	}
}

// TargetType tags review scores. Casing differs from Domain on purpose:
// the review endpoints expect the upper-case enum name.
type TargetType string

const (
	TargetArticle   TargetType = "ARTICLE"
	TargetSyntax    TargetType = "SYNTAX"
	TargetProcedure TargetType = "PROCEDURE"
)

// ParseTargetType accepts the enum name in any case or a domain name.
func ParseTargetType(s string) (TargetType, error) {
	switch s {
	case "ARTICLE", "article", "articles":
		return TargetArticle, nil
	case "SYNTAX", "syntax", "syntaxes":
		return TargetSyntax, nil
	case "PROCEDURE", "procedure", "procedures":
		return TargetProcedure, nil
	default:
		return "", fmt.Errorf("unknown review target %q", s)
	}
}

// ReadSet holds the content ids the current user has marked read within
// one domain.
type ReadSet map[int64]struct{}

// NewReadSet builds a set from a list of ids.
func NewReadSet(ids []int64) ReadSet {
	set := make(ReadSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set.
func (s ReadSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy.
func (s ReadSet) Clone() ReadSet {
	out := make(ReadSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// LikeState is the like relationship for one content item.
type LikeState struct {
	Liked bool
	Count int
}

// Toggled returns the state after flipping Liked. Count moves with it and
// never drops below zero.
func (l LikeState) Toggled() LikeState {
	if l.Liked {
		next := LikeState{Liked: false, Count: l.Count - 1}
		if next.Count < 0 {
			next.Count = 0
		}
		return next
	}
	return LikeState{Liked: true, Count: l.Count + 1}
}

// ReviewScore is one user's star rating for an item.
type ReviewScore struct {
	ID     int64   `json:"id"`
	UserID string  `json:"userId"`
	Score  float64 `json:"score"`
}

// LikedArticle is one entry of the current user's liked-articles list.
type LikedArticle struct {
	ID         int64
	Title      string
	AuthorName string
}

// Procedure is a step-by-step guide entry. StepNumber is the raw,
// loosely formatted ordering key as authored.
type Procedure struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	StepNumber string `json:"stepNumber"`
	Summary    string `json:"summary,omitempty"`
}

// Page is one page of a backend paginated collection.
type Page[T any] struct {
	Content    []T `json:"content"`
	TotalPages int `json:"totalPages"`
}
