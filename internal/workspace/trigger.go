package workspace

import (
	"context"
	"time"
)

// Trigger signals that the collections should be fetched again
type Trigger interface {
	Signals() <-chan struct{}
}

// ManualTrigger fires only when Fire is called
type ManualTrigger struct {
	ch chan struct{}
}

// NewManualTrigger creates a ManualTrigger
func NewManualTrigger() *ManualTrigger {
	return &ManualTrigger{ch: make(chan struct{}, 1)}
}

// Fire requests a refresh. Signals coalesce while one is already pending.
func (t *ManualTrigger) Fire() {
	select {
	case t.ch <- struct{}{}:
	default:
	}
}

func (t *ManualTrigger) Signals() <-chan struct{} {
	return t.ch
}

// TickerTrigger fires on a fixed interval
type TickerTrigger struct {
	ticker *time.Ticker
	ch     chan struct{}
	done   chan struct{}
}

// NewTickerTrigger starts a TickerTrigger; call Stop to release it
func NewTickerTrigger(interval time.Duration) *TickerTrigger {
	t := &TickerTrigger{
		ticker: time.NewTicker(interval),
		ch:     make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.C:
				select {
				case t.ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return t
}

func (t *TickerTrigger) Signals() <-chan struct{} {
	return t.ch
}

// Stop halts the ticker
func (t *TickerTrigger) Stop() {
	t.ticker.Stop()
	close(t.done)
}

// Merge fans several triggers into one. The forwarding goroutines exit when
// ctx is done or their source channel is closed.
func Merge(ctx context.Context, triggers ...Trigger) Trigger {
	out := make(chan struct{}, 1)
	for _, tr := range triggers {
		go func(in <-chan struct{}) {
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-in:
					if !ok {
						return
					}
					select {
					case out <- struct{}{}:
					default:
					}
				}
			}
		}(tr.Signals())
	}
	return chanTrigger(out)
}

type chanTrigger chan struct{}

func (c chanTrigger) Signals() <-chan struct{} {
	return c
}
