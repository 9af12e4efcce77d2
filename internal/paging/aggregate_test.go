package paging

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/lumen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type entry struct {
	id   int
	step string
}

func entryKey(e entry) string { return e.step }

// pagedSource serves fixed pages and records how many fetches it saw.
type pagedSource struct {
	pages  [][]entry
	delays []time.Duration
	fail   map[int]error
	calls  atomic.Int32
}

func (s *pagedSource) fetch(ctx context.Context, page int) (domain.Page[entry], error) {
	s.calls.Add(1)
	if page < len(s.delays) && s.delays[page] > 0 {
		select {
		case <-time.After(s.delays[page]):
		case <-ctx.Done():
			return domain.Page[entry]{}, ctx.Err()
		}
	}
	if err, ok := s.fail[page]; ok {
		return domain.Page[entry]{}, err
	}
	return domain.Page[entry]{Content: s.pages[page], TotalPages: len(s.pages)}, nil
}

func makePage(start, n int, step func(i int) string) []entry {
	out := make([]entry, n)
	for i := range out {
		out[i] = entry{id: start + i, step: step(start + i)}
	}
	return out
}

func TestAggregate_ThreePagesSortedAndRepaged(t *testing.T) {
	// Keys cycle through a mix of formats; every seventh is unparsable.
	step := func(i int) string {
		if i%7 == 0 {
			return "n/a"
		}
		return fmt.Sprintf("%d-%d", (i*37)%12+1, i%10)
	}
	src := &pagedSource{pages: [][]entry{
		makePage(0, 50, step),
		makePage(50, 50, step),
		makePage(100, 10, step),
	}}

	res, err := Aggregate(context.Background(), src.fetch, entryKey, 25)
	require.NoError(t, err)

	assert.Equal(t, 110, res.Len())
	assert.Equal(t, 5, res.TotalPages)
	assert.Equal(t, int32(3), src.calls.Load())

	for i := 1; i < len(res.Items); i++ {
		prev, cur := res.Items[i-1].Key, res.Items[i].Key
		assert.False(t, cur.Less(prev), "items %d and %d out of order: %s > %s", i-1, i, prev, cur)
	}

	uncategorized := 0
	for _, it := range res.Items {
		if it.Key.Uncategorized() {
			uncategorized++
		}
	}
	require.Positive(t, uncategorized)
	for i := 0; i < uncategorized; i++ {
		assert.True(t, res.Items[i].Key.Uncategorized(), "uncategorized items must sort first")
	}

	collected := 0
	for p := 0; p < res.TotalPages; p++ {
		collected += len(res.Page(p))
	}
	assert.Equal(t, 110, collected)
	assert.Len(t, res.Page(4), 10)
	assert.Nil(t, res.Page(5))
	assert.Nil(t, res.Page(-1))
}

func TestAggregate_ConcatenatesInPageOrder(t *testing.T) {
	// Every item shares one key, so the stable sort must preserve page order
	// even though page 1 finishes last.
	same := func(int) string { return "1-01" }
	src := &pagedSource{
		pages: [][]entry{
			makePage(0, 2, same),
			makePage(2, 2, same),
			makePage(4, 2, same),
		},
		delays: []time.Duration{0, 30 * time.Millisecond, 0},
	}

	res, err := Aggregate(context.Background(), src.fetch, entryKey, 10)
	require.NoError(t, err)

	ids := make([]int, 0, res.Len())
	for _, it := range res.Items {
		ids = append(ids, it.Value.id)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, ids)
	assert.Equal(t, 1, res.TotalPages)
}

func TestAggregate_SinglePageSkipsFanOut(t *testing.T) {
	src := &pagedSource{pages: [][]entry{{{1, "1104"}, {2, "509"}, {3, "garbage"}}}}

	res, err := Aggregate(context.Background(), src.fetch, entryKey, 2)
	require.NoError(t, err)

	assert.Equal(t, int32(1), src.calls.Load())
	require.Equal(t, 3, res.Len())
	assert.Equal(t, "0-00", res.Items[0].Key.Canonical)
	assert.Equal(t, "5-09", res.Items[1].Key.Canonical)
	assert.Equal(t, "11-04", res.Items[2].Key.Canonical)
	assert.Equal(t, 2, res.TotalPages)
}

func TestAggregate_EmptyCollection(t *testing.T) {
	src := &pagedSource{pages: [][]entry{{}}}

	res, err := Aggregate(context.Background(), src.fetch, entryKey, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Len())
	assert.Equal(t, 0, res.TotalPages)
	assert.Equal(t, DefaultPageSize, res.PageSize)
	assert.Nil(t, res.Page(0))
}

func TestAggregate_PageFailureYieldsNothing(t *testing.T) {
	boom := errors.New("backend exploded")
	src := &pagedSource{
		pages: [][]entry{
			makePage(0, 5, func(int) string { return "1-1" }),
			makePage(5, 5, func(int) string { return "1-1" }),
			makePage(10, 5, func(int) string { return "1-1" }),
		},
		fail:   map[int]error{2: boom},
		delays: []time.Duration{0, 50 * time.Millisecond, 0},
	}

	res, err := Aggregate(context.Background(), src.fetch, entryKey, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, 0, res.TotalPages)
}

func TestAggregate_FirstPageFailure(t *testing.T) {
	boom := errors.New("nope")
	src := &pagedSource{pages: [][]entry{{}}, fail: map[int]error{0: boom}}

	res, err := Aggregate(context.Background(), src.fetch, entryKey, 10)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, int32(1), src.calls.Load())
}
