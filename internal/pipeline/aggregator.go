package pipeline

import "sync"

// Aggregator collects per-item outcomes from concurrent workers.
//
// Record may be called from any goroutine until Close is called. Summary
// blocks until Close has been called and every recorded outcome is counted.
type Aggregator interface {
	Record(r Result)
	Close()
	Summary() RunSummary
}

// MutexAggregator counts outcomes under a mutex.
type MutexAggregator struct {
	mu      sync.Mutex
	summary RunSummary
}

// NewMutexAggregator returns an empty MutexAggregator.
func NewMutexAggregator() *MutexAggregator {
	return &MutexAggregator{}
}

func (a *MutexAggregator) Record(r Result) {
	a.mu.Lock()
	a.summary.add(r.Outcome)
	a.mu.Unlock()
}

// Close is a no-op; every Record completes before it returns.
func (a *MutexAggregator) Close() {}

func (a *MutexAggregator) Summary() RunSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary
}

// ChannelAggregator counts outcomes sent over a report channel. A single
// goroutine owns the counters and stops once the channel is closed and
// drained. Close must only be called after every sender has returned.
type ChannelAggregator struct {
	reports chan Outcome
	done    chan struct{}
	summary RunSummary
}

// NewChannelAggregator starts the counting goroutine. buffer sizes the report
// channel; zero makes every Record a rendezvous with the counter.
func NewChannelAggregator(buffer int) *ChannelAggregator {
	a := &ChannelAggregator{
		reports: make(chan Outcome, max(buffer, 0)),
		done:    make(chan struct{}),
	}
	go a.count()
	return a
}

func (a *ChannelAggregator) count() {
	defer close(a.done)
	for o := range a.reports {
		a.summary.add(o)
	}
}

func (a *ChannelAggregator) Record(r Result) {
	a.reports <- r.Outcome
}

func (a *ChannelAggregator) Close() {
	close(a.reports)
}

func (a *ChannelAggregator) Summary() RunSummary {
	<-a.done
	return a.summary
}

// SumOutcomes reduces per-item outcomes into a summary. Slots that never ran
// contribute nothing.
func SumOutcomes(outcomes []Outcome) RunSummary {
	var s RunSummary
	for _, o := range outcomes {
		s.add(o)
	}
	return s
}

var (
	_ Aggregator = (*MutexAggregator)(nil)
	_ Aggregator = (*ChannelAggregator)(nil)
)
