package tui

import "github.com/mmcdole/lumen/internal/engagement"

// ChannelObserver adapts engagement.Observer to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- engagement.Event
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- engagement.Event) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnEngagementChange sends the event to the channel (non-blocking if full).
func (o *ChannelObserver) OnEngagementChange(ev engagement.Event) {
	select {
	case o.ch <- ev:
	default: // The view re-reads every store on the next event anyway
	}
}
