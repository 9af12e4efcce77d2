// Package lifecycle gives stateful components at most one live request per
// logical operation.
package lifecycle

import "context"

// Slot owns the single live request of one logical operation. It is not
// safe for concurrent use on its own: the owner guards its slots with the
// same mutex that guards the state they commit to, so checking the
// generation and applying a result happen atomically.
type Slot struct {
	gen    uint64
	cancel context.CancelFunc
}

// Begin cancels whatever the slot was running and returns a context for the
// new operation along with its generation.
func (s *Slot) Begin(parent context.Context) (context.Context, uint64) {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.gen++
	s.cancel = cancel
	return ctx, s.gen
}

// Current reports whether gen is still the slot's live operation.
func (s *Slot) Current(gen uint64) bool {
	return s.gen == gen
}

// End releases the context of gen once its result has been handled.
// It is a no-op if gen has been superseded.
func (s *Slot) End(gen uint64) {
	if s.gen != gen || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

// Stop cancels the live operation and invalidates its generation so any
// late result is discarded.
func (s *Slot) Stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}

// Outcome classifies how a slot-owned request finished.
type Outcome int

const (
	Commit     Outcome = iota // Result belongs to the live generation
	Superseded                // A newer call or Stop took over; drop silently
	Canceled                  // The caller's own context ended
)

// Settle decides what to do with a finished request. It must be called with
// the owner's mutex held. parent is the context the caller passed in.
func (s *Slot) Settle(parent context.Context, gen uint64, err error) Outcome {
	if !s.Current(gen) {
		return Superseded
	}
	if err != nil && parent.Err() != nil {
		s.End(gen)
		return Canceled
	}
	s.End(gen)
	return Commit
}
