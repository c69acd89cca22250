package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// partition collects every item, then splits the list into contiguous
// chunks of ceil(n/K) items and runs one goroutine per chunk. There is no
// work sharing between chunks. Outcomes are counted in a MutexAggregator.
type partition struct {
	runState

	workers int
	items   []WorkItem
	drained bool
}

func newPartition(ctx context.Context, p Processor, opts Options) *partition {
	return &partition{
		runState: newRunState(ctx, p, opts),
		workers:  opts.Workers,
	}
}

func (pt *partition) Submit(item WorkItem) error {
	if pt.drained {
		return ErrDrained
	}
	pt.items = append(pt.items, item)
	return nil
}

func (pt *partition) Drain() (RunSummary, error) {
	if pt.drained {
		return RunSummary{}, ErrDrained
	}
	pt.drained = true

	agg := NewMutexAggregator()
	var wg sync.WaitGroup

	chunks := splitChunks(pt.items, pt.workers)
	log.Debug().Int("items", len(pt.items)).Int("chunks", len(chunks)).Msg("Partitioned work")

	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []WorkItem) {
			defer wg.Done()
			for _, item := range chunk {
				res, ok := pt.process(item)
				if !ok {
					return
				}
				agg.Record(res)
			}
		}(chunk)
	}

	wg.Wait()
	agg.Close()

	return agg.Summary(), pt.finish()
}

// splitChunks divides items into at most k contiguous chunks of
// ceil(len(items)/k) items; the last chunk may be shorter. No empty chunk is
// returned.
func splitChunks(items []WorkItem, k int) [][]WorkItem {
	if len(items) == 0 || k <= 0 {
		return nil
	}

	size := (len(items) + k - 1) / k
	chunks := make([][]WorkItem, 0, k)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
