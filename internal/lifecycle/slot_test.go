package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlot_BeginCancelsPrevious(t *testing.T) {
	var s Slot
	first, g1 := s.Begin(context.Background())
	second, g2 := s.Begin(context.Background())

	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.NoError(t, second.Err())
	assert.False(t, s.Current(g1))
	assert.True(t, s.Current(g2))

	s.End(g2)
	assert.Error(t, second.Err(), "end releases the live context")
}

func TestSlot_Settle(t *testing.T) {
	t.Run("superseded", func(t *testing.T) {
		var s Slot
		_, g1 := s.Begin(context.Background())
		s.Begin(context.Background())
		assert.Equal(t, Superseded, s.Settle(context.Background(), g1, context.Canceled))
	})

	t.Run("stopped", func(t *testing.T) {
		var s Slot
		_, g := s.Begin(context.Background())
		s.Stop()
		assert.Equal(t, Superseded, s.Settle(context.Background(), g, nil))
	})

	t.Run("caller canceled", func(t *testing.T) {
		var s Slot
		parent, cancel := context.WithCancel(context.Background())
		_, g := s.Begin(parent)
		cancel()
		assert.Equal(t, Canceled, s.Settle(parent, g, context.Canceled))
	})

	t.Run("commit result or error", func(t *testing.T) {
		var s Slot
		_, g := s.Begin(context.Background())
		assert.Equal(t, Commit, s.Settle(context.Background(), g, errors.New("boom")))
	})
}
