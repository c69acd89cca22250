package pipeline

import (
	"sync"
	"testing"
)

func TestAggregators_NoLostUpdates(t *testing.T) {
	const (
		workers = 8
		perWkr  = 1250 // 10,000 records in total
	)

	aggregators := map[string]func() Aggregator{
		"mutex":   func() Aggregator { return NewMutexAggregator() },
		"channel": func() Aggregator { return NewChannelAggregator(workers) },
		"channel unbuffered": func() Aggregator {
			return NewChannelAggregator(0)
		},
	}

	for name, newAgg := range aggregators {
		t.Run(name, func(t *testing.T) {
			agg := newAgg()

			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := 0; i < perWkr; i++ {
						outcome := Success
						// Worker 0 reports every tenth item as a decode failure.
						if w == 0 && i%10 == 0 {
							outcome = DecodeFailure
						}
						agg.Record(Result{Outcome: outcome})
					}
				}(w)
			}
			wg.Wait()
			agg.Close()

			got := agg.Summary()
			wantDecode := perWkr / 10
			if got.DecodeFailures != wantDecode {
				t.Errorf("DecodeFailures = %d, want %d", got.DecodeFailures, wantDecode)
			}
			if got.Processed != workers*perWkr-wantDecode {
				t.Errorf("Processed = %d, want %d", got.Processed, workers*perWkr-wantDecode)
			}
			if got.Total() != workers*perWkr {
				t.Errorf("Total() = %d, want %d", got.Total(), workers*perWkr)
			}
		})
	}
}

func TestSumOutcomes(t *testing.T) {
	got := SumOutcomes([]Outcome{Success, notRun, DecodeFailure, Success, WriteFailure, notRun})
	want := RunSummary{Processed: 2, DecodeFailures: 1, WriteFailures: 1}
	if got != want {
		t.Errorf("SumOutcomes() = %+v, want %+v", got, want)
	}

	if got := SumOutcomes(nil); got != (RunSummary{}) {
		t.Errorf("SumOutcomes(nil) = %+v, want zero", got)
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{Success, "success"},
		{DecodeFailure, "decode_failure"},
		{WriteFailure, "write_failure"},
		{Outcome(9), "outcome(9)"},
	}
	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(tt.outcome), got, tt.want)
		}
	}
}
