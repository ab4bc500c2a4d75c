// Package rate spaces out benchmark iterations at a fixed rate.
package rate

import (
	"context"
	"sync"
	"time"
)

// Pacer hands out start times one interval apart. An iteration that is
// already late starts immediately and the schedule restarts from now, so a
// slow server never causes a catch-up burst.
//
// Pacer is safe for concurrent use.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time

	scheduled int64
	waited    time.Duration
}

// NewPacer creates a pacer for perSecond iterations per second. A
// non-positive rate means one per second.
func NewPacer(perSecond float64) *Pacer {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Pacer{interval: time.Duration(float64(time.Second) / perSecond)}
}

// Interval is the spacing between two iterations.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Next reserves a slot and returns when it starts. The first slot starts now.
func (p *Pacer) Next() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if p.next.Before(now) {
		p.next = now
	}
	start := p.next
	p.next = start.Add(p.interval)

	p.scheduled++
	p.waited += start.Sub(now)
	return start
}

// Wait blocks until the next slot starts or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	d := time.Until(p.Next())
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stats describes how the pacer has been used.
type Stats struct {
	Interval  time.Duration
	Scheduled int64
	// Waited is the total delay handed out by Next.
	Waited time.Duration
}

// Stats returns a snapshot of the pacer's counters.
func (p *Pacer) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Interval: p.interval, Scheduled: p.scheduled, Waited: p.waited}
}
