package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// StrategyKind names a dispatch strategy.
type StrategyKind string

const (
	// RoundRobin feeds K long-lived workers, each from its own queue, assigning
	// items cyclically as they are enumerated.
	RoundRobin StrategyKind = "round-robin"
	// Partition splits the full item list into K contiguous chunks, one
	// goroutine per chunk.
	Partition StrategyKind = "partition"
	// Pool hands items to a shared pool of K slots that take the next item
	// as soon as one frees up.
	Pool StrategyKind = "pool"
)

// Strategies lists every supported strategy in display order.
var Strategies = []StrategyKind{RoundRobin, Partition, Pool}

// ParseStrategy converts a user-supplied name to a StrategyKind.
func ParseStrategy(s string) (StrategyKind, error) {
	switch k := StrategyKind(strings.ToLower(strings.TrimSpace(s))); k {
	case RoundRobin, Partition, Pool:
		return k, nil
	case "roundrobin", "rr":
		return RoundRobin, nil
	case "chunk", "chunks", "static":
		return Partition, nil
	case "dynamic", "work-stealing":
		return Pool, nil
	}
	return "", fmt.Errorf("unknown strategy %q (want one of %s, %s, %s)", s, RoundRobin, Partition, Pool)
}

// Streaming reports whether the strategy starts processing while items are
// still being enumerated.
func (k StrategyKind) Streaming() bool {
	return k == RoundRobin
}

// WriteFailurePolicy decides what a WriteFailure does to the rest of the run.
type WriteFailurePolicy string

const (
	// SkipOnWriteFailure counts the item as a non-success and continues.
	SkipOnWriteFailure WriteFailurePolicy = "skip"
	// AbortOnWriteFailure stops dispatching new items after the first
	// write failure; Drain returns ErrWriteAborted.
	AbortOnWriteFailure WriteFailurePolicy = "abort"
)

// ParseWriteFailurePolicy converts a user-supplied name to a policy.
func ParseWriteFailurePolicy(s string) (WriteFailurePolicy, error) {
	switch p := WriteFailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case SkipOnWriteFailure, AbortOnWriteFailure:
		return p, nil
	case "":
		return SkipOnWriteFailure, nil
	}
	return "", fmt.Errorf("unknown write failure policy %q (want %s or %s)", s, SkipOnWriteFailure, AbortOnWriteFailure)
}

var (
	// ErrWriteAborted is returned by Drain when AbortOnWriteFailure stopped the run.
	ErrWriteAborted = errors.New("run aborted after write failure")

	// ErrDrained is returned by Submit and Drain once Drain has been called.
	ErrDrained = errors.New("strategy already drained")
)

// DefaultQueueSize bounds each round-robin worker queue.
const DefaultQueueSize = 16

// Options configures a Strategy.
type Options struct {
	// Workers is the number of concurrent workers (K). Must be at least 1.
	Workers int

	// QueueSize bounds each round-robin worker queue. Zero uses
	// DefaultQueueSize. Ignored by the other strategies.
	QueueSize int

	// OnWriteFailure selects the write failure policy. Empty means skip.
	OnWriteFailure WriteFailurePolicy

	// Observe, if set, is called with every Result as soon as its worker
	// finishes. It is called concurrently from worker goroutines.
	Observe func(Result)
}

// Strategy assigns WorkItems to workers and aggregates their outcomes.
//
// Submit and Drain are called from a single goroutine. Each submitted item is
// processed at most once. Drain waits for every worker to finish and returns
// the summary; it may be called only once.
type Strategy interface {
	Submit(item WorkItem) error
	Drain() (RunSummary, error)
}

// NewStrategy builds the strategy named by kind. Workers started by the
// strategy stop taking new items once ctx is done.
func NewStrategy(ctx context.Context, kind StrategyKind, p Processor, opts Options) (Strategy, error) {
	if p == nil {
		return nil, errors.New("processor is nil")
	}
	if opts.Workers <= 0 {
		return nil, fmt.Errorf("workers must be >= 1, got %d", opts.Workers)
	}
	if opts.QueueSize < 0 {
		return nil, fmt.Errorf("queue size must be >= 0, got %d", opts.QueueSize)
	}
	if opts.QueueSize == 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.OnWriteFailure == "" {
		opts.OnWriteFailure = SkipOnWriteFailure
	}

	switch kind {
	case RoundRobin:
		return newRoundRobin(ctx, p, opts), nil
	case Partition:
		return newPartition(ctx, p, opts), nil
	case Pool:
		return newPool(ctx, p, opts), nil
	}
	return nil, fmt.Errorf("unknown strategy %q", kind)
}

// runState carries what every strategy shares: the run context, the
// processor, and the write failure policy.
type runState struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	proc    Processor
	policy  WriteFailurePolicy
	observe func(Result)
}

func newRunState(ctx context.Context, p Processor, opts Options) runState {
	runCtx, cancel := context.WithCancelCause(ctx)
	return runState{
		ctx:     runCtx,
		cancel:  cancel,
		proc:    p,
		policy:  opts.OnWriteFailure,
		observe: opts.Observe,
	}
}

// process runs one item unless the run has been stopped. ok is false when the
// item was skipped.
func (s *runState) process(item WorkItem) (res Result, ok bool) {
	if s.ctx.Err() != nil {
		return Result{}, false
	}

	res = s.proc.Process(s.ctx, item)

	if res.Outcome == WriteFailure && s.policy == AbortOnWriteFailure {
		s.cancel(fmt.Errorf("%w: %s: %v", ErrWriteAborted, item.Source, res.Err))
	}
	if s.observe != nil {
		s.observe(res)
	}
	return res, true
}

// finish releases the run context and returns why the run stopped early, or
// nil if it ran to completion.
func (s *runState) finish() error {
	err := context.Cause(s.ctx)
	s.cancel(nil)
	return err
}
