// Package paging collects every page of a backend paginated collection,
// orders the items by their canonical step key, and re-slices them into
// fixed-size client pages.
package paging

import (
	"context"
	"fmt"
	"slices"

	"github.com/mmcdole/lumen/internal/domain"
	"github.com/mmcdole/lumen/internal/stepkey"
	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is the client page size used when the caller passes none.
const DefaultPageSize = 10

// PageFunc fetches one zero-based backend page.
type PageFunc[T any] func(ctx context.Context, page int) (domain.Page[T], error)

// Item pairs a fetched value with its parsed ordering key.
type Item[T any] struct {
	Value T
	Key   stepkey.Key
}

// Result is the sorted, re-paginated view of a whole collection.
type Result[T any] struct {
	Items      []Item[T] // All items, sorted by key
	PageSize   int       // Client page size
	TotalPages int       // Client page count, 0 when empty
}

// Page returns client page i (zero-based), or nil when out of range.
func (r Result[T]) Page(i int) []Item[T] {
	if i < 0 || i >= r.TotalPages || r.PageSize <= 0 {
		return nil
	}
	start := i * r.PageSize
	end := min(start+r.PageSize, len(r.Items))
	return r.Items[start:end]
}

// Len returns the number of items across all pages.
func (r Result[T]) Len() int {
	return len(r.Items)
}

// Aggregate fetches page 0 to learn the page count, fetches the remaining
// pages concurrently, and concatenates them in page order. Each item's raw
// key is parsed with stepkey.Parse and the items are stable-sorted, so
// uncategorized entries come first and equal keys keep backend order.
//
// A failed page aborts the whole aggregation: the in-flight fetches are
// canceled and an empty Result is returned with the error.
func Aggregate[T any](
	ctx context.Context,
	fetch PageFunc[T],
	rawKey func(T) string,
	pageSize int,
) (Result[T], error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	empty := Result[T]{PageSize: pageSize}

	first, err := fetch(ctx, 0)
	if err != nil {
		return empty, fmt.Errorf("fetch page 0: %w", err)
	}

	pages := make([][]T, max(first.TotalPages, 1))
	pages[0] = first.Content

	if first.TotalPages > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for p := 1; p < first.TotalPages; p++ {
			g.Go(func() error {
				page, err := fetch(gctx, p)
				if err != nil {
					return fmt.Errorf("fetch page %d: %w", p, err)
				}
				// Each goroutine owns its own slot
				pages[p] = page.Content
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return empty, err
		}
	}

	total := 0
	for _, p := range pages {
		total += len(p)
	}

	items := make([]Item[T], 0, total)
	for _, p := range pages {
		for _, v := range p {
			items = append(items, Item[T]{Value: v, Key: stepkey.Parse(rawKey(v))})
		}
	}

	slices.SortStableFunc(items, func(a, b Item[T]) int {
		return a.Key.Compare(b.Key)
	})

	return Result[T]{
		Items:      items,
		PageSize:   pageSize,
		TotalPages: (len(items) + pageSize - 1) / pageSize,
	}, nil
}
