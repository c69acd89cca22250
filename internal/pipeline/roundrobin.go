package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// roundRobin keeps one long-lived goroutine per queue. Item i is pushed onto
// queue i mod K as soon as it is submitted, so enumeration and processing
// overlap. Outcomes are reported over a ChannelAggregator.
type roundRobin struct {
	runState

	queues  []chan WorkItem
	agg     *ChannelAggregator
	wg      sync.WaitGroup
	next    int
	drained bool
}

func newRoundRobin(ctx context.Context, p Processor, opts Options) *roundRobin {
	rr := &roundRobin{
		runState: newRunState(ctx, p, opts),
		queues:   make([]chan WorkItem, opts.Workers),
		agg:      NewChannelAggregator(opts.Workers),
	}
	for i := range rr.queues {
		rr.queues[i] = make(chan WorkItem, opts.QueueSize)
		rr.wg.Add(1)
		go rr.work(i, rr.queues[i])
	}
	return rr
}

// work drains one queue until it is closed. After cancellation remaining
// items are discarded so that Submit never blocks on a stopped worker.
func (rr *roundRobin) work(id int, queue <-chan WorkItem) {
	defer rr.wg.Done()

	handled := 0
	for item := range queue {
		res, ok := rr.process(item)
		if !ok {
			continue
		}
		rr.agg.Record(res)
		handled++
	}

	log.Debug().Int("worker", id).Int("items", handled).Msg("Worker queue drained")
}

func (rr *roundRobin) Submit(item WorkItem) error {
	if rr.drained {
		return ErrDrained
	}

	queue := rr.queues[rr.next%len(rr.queues)]
	select {
	case queue <- item:
		rr.next++
		return nil
	case <-rr.ctx.Done():
		return context.Cause(rr.ctx)
	}
}

func (rr *roundRobin) Drain() (RunSummary, error) {
	if rr.drained {
		return RunSummary{}, ErrDrained
	}
	rr.drained = true

	for _, q := range rr.queues {
		close(q)
	}
	rr.wg.Wait()
	rr.agg.Close()

	return rr.agg.Summary(), rr.finish()
}
