// Package catalog serves the procedure listing: every backend page merged,
// ordered by step number and re-sliced into client pages.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/lifecycle"
	"github.com/mmcdole/lumen/internal/paging"
	"github.com/mmcdole/lumen/internal/search"
)

// DefaultBackendPageSize is the page size requested from the backend.
const DefaultBackendPageSize = 50

// Entry is a procedure with its parsed step key.
type Entry = paging.Item[domain.Procedure]

// Section is a run of entries sharing a major step number.
type Section struct {
	Label   string
	Entries []Entry
}

// Options tunes paging.
type Options struct {
	PageSize        int // Client page size; 0 uses paging.DefaultPageSize
	BackendPageSize int // Backend page size; 0 uses DefaultBackendPageSize
}

// Snapshot is a consistent copy of the catalog's status.
type Snapshot struct {
	Loading    bool
	Err        string
	Len        int
	TotalPages int
}

// Service holds the aggregated procedure listing.
type Service struct {
	repo            domain.ProcedureRepository
	pageSize        int
	backendPageSize int
	logger          *slog.Logger

	mu      sync.Mutex
	fetch   lifecycle.Slot
	result  paging.Result[domain.Procedure]
	loading bool
	errMsg  string
}

// NewService creates a catalog backed by repo
func NewService(repo domain.ProcedureRepository, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = paging.DefaultPageSize
	}
	if opts.BackendPageSize <= 0 {
		opts.BackendPageSize = DefaultBackendPageSize
	}
	return &Service{
		repo:            repo,
		pageSize:        opts.PageSize,
		backendPageSize: opts.BackendPageSize,
		logger:          logger,
		result:          paging.Result[domain.Procedure]{PageSize: opts.PageSize},
	}
}

// Refresh reloads the whole listing. A newer call supersedes an older one.
// On failure the listing is emptied and Err describes the problem.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	fetchCtx, gen := s.fetch.Begin(ctx)
	s.loading = true
	s.mu.Unlock()

	fetch := func(ctx context.Context, page int) (domain.Page[domain.Procedure], error) {
		return s.repo.Procedures(ctx, page, s.backendPageSize)
	}
	stepNumber := func(p domain.Procedure) string { return p.StepNumber }

	result, err := paging.Aggregate(fetchCtx, fetch, stepNumber, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.fetch.Settle(ctx, gen, err) {
	case lifecycle.Superseded:
		return nil
	case lifecycle.Canceled:
		s.loading = false
		return ctx.Err()
	}

	s.loading = false
	s.result = result
	if err != nil {
		s.errMsg = domain.Describe("load procedures", err)
		s.logger.Error("failed to aggregate procedures", "error", err)
		return fmt.Errorf("load procedures: %w", err)
	}

	s.errMsg = ""
	s.logger.Debug("procedures loaded", "count", result.Len(), "pages", result.TotalPages)
	return nil
}

// Page returns client page i (zero-based), nil when out of range
func (s *Service) Page(i int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.result.Page(i)...)
}

// TotalPages returns the number of client pages
func (s *Service) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.TotalPages
}

// All returns every entry in step order
func (s *Service) All() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.result.Items...)
}

// Sections groups the listing by major step number, keeping step order.
// Uncategorized entries form the first section when present.
func (s *Service) Sections() []Section {
	return group(s.All())
}

// Filter returns the entries whose title fuzzily matches query, in step
// order. An empty query returns the whole listing.
func (s *Service) Filter(query string) []Entry {
	entries := s.All()
	if query == "" {
		return entries
	}

	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Value.Title
	}

	matches := search.Titles(query, titles)
	out := make([]Entry, len(matches))
	for i, m := range matches {
		out[i] = entries[m.Index]
	}
	return out
}

// Snapshot returns the catalog's status
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Loading:    s.loading,
		Err:        s.errMsg,
		Len:        s.result.Len(),
		TotalPages: s.result.TotalPages,
	}
}

// Close cancels an in-flight refresh
func (s *Service) Close() {
	s.mu.Lock()
	s.fetch.Stop()
	s.loading = false
	s.mu.Unlock()
}

func group(entries []Entry) []Section {
	var sections []Section
	for _, e := range entries {
		label := e.Key.Section()
		if n := len(sections); n > 0 && sections[n-1].Label == label {
			sections[n-1].Entries = append(sections[n-1].Entries, e)
			continue
		}
		sections = append(sections, Section{Label: label, Entries: []Entry{e}})
	}
	return sections
}
