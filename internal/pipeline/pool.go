package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// pool collects every item and then maps them over an errgroup limited to K
// goroutines. Each item writes its outcome to its own slot, and the slots
// are reduced into the summary once the group has finished.
type pool struct {
	runState

	workers int
	items   []WorkItem
	drained bool
}

func newPool(ctx context.Context, p Processor, opts Options) *pool {
	return &pool{
		runState: newRunState(ctx, p, opts),
		workers:  opts.Workers,
	}
}

func (pl *pool) Submit(item WorkItem) error {
	if pl.drained {
		return ErrDrained
	}
	pl.items = append(pl.items, item)
	return nil
}

func (pl *pool) Drain() (RunSummary, error) {
	if pl.drained {
		return RunSummary{}, ErrDrained
	}
	pl.drained = true

	outcomes := make([]Outcome, len(pl.items))
	for i := range outcomes {
		outcomes[i] = notRun
	}

	var g errgroup.Group
	g.SetLimit(pl.workers)

	for i, item := range pl.items {
		if pl.ctx.Err() != nil {
			break
		}
		i, item := i, item // per-iteration copies (go.mod targets go 1.21)
		// Go blocks until one of the K slots is free.
		g.Go(func() error {
			if res, ok := pl.process(item); ok {
				outcomes[i] = res.Outcome
			}
			return nil
		})
	}
	_ = g.Wait()

	return SumOutcomes(outcomes), pl.finish()
}
