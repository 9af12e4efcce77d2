package engagement

import (
	"sync"

	"github.com/mmcdole/lumen/internal/domain"
)

// Kind names the store that changed.
type Kind int

const (
	KindRead Kind = iota
	KindLike
	KindReview
	KindLiked
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindLike:
		return "like"
	case KindReview:
		return "review"
	case KindLiked:
		return "liked"
	default:
		return "unknown"
	}
}

// Event is delivered after a store commits new state. Loading flips and
// superseded results never produce an event.
type Event struct {
	Kind   Kind
	Domain domain.Domain
	ItemID int64 // Zero for collection-level stores
}

// Observer receives committed state changes. Implementations must not block;
// the call happens on the goroutine that committed the change.
type Observer interface {
	OnEngagementChange(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEngagementChange(ev Event) { f(ev) }

// notifier is embedded by every store.
type notifier struct {
	obsMu    sync.Mutex
	observer Observer
}

// SetObserver replaces the store's observer. nil removes it.
func (n *notifier) SetObserver(o Observer) {
	n.obsMu.Lock()
	n.observer = o
	n.obsMu.Unlock()
}

// notify must be called without the store's state mutex held.
func (n *notifier) notify(ev Event) {
	n.obsMu.Lock()
	o := n.observer
	n.obsMu.Unlock()
	if o != nil {
		o.OnEngagementChange(ev)
	}
}
