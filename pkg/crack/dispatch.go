package crack

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mfcuk/hardnested-core/pkg/noncetable"
	"github.com/mfcuk/hardnested-core/pkg/statelist"
)

// Dispatcher partitions buckets across NumWorkers goroutines and races them
// to find the key, matching crack_states_thread/brute_force_bs: each
// worker iterates buckets[w], buckets[w+NumWorkers], ... and the first one
// to find a key cancels the rest.
type Dispatcher struct {
	NumWorkers int
	// Progress, if set, is called roughly every 10 seconds with the
	// cumulative tested and total candidate counts (hardnested_print_progress's
	// role) so a caller can drive its own progress bar.
	Progress func(tested, total uint64, elapsed time.Duration)
}

// Run partitions buckets across workers and returns the first key found
// (if any), the total number of candidates tested, and the elapsed time.
func (d *Dispatcher) Run(ctx context.Context, buckets []statelist.Bucket, tn noncetable.TestNonces, allNonces *noncetable.List, cuid uint32, bestFirstBytes []byte) (Result, uint64, time.Duration) {
	workers := d.NumWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(buckets) && len(buckets) > 0 {
		workers = len(buckets)
	}

	var keysFound atomic.Bool
	var tested atomic.Uint64
	var result Result

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	start := time.Now()
	total := uint64(statelist.Count(buckets))
	done := make(chan struct{})
	if d.Progress != nil {
		go d.reportProgress(start, &tested, total, done)
	}

	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < len(buckets); i += workers {
				if keysFound.Load() {
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				if r, ok := CrackBucket(buckets[i], tn, allNonces, cuid, bestFirstBytes, &tested); ok {
					if keysFound.CompareAndSwap(false, true) {
						result = r
					}
					cancel()
					return nil
				}
			}
			return nil
		})
	}

	g.Wait() //nolint:errcheck // worker goroutines never return a non-nil error
	close(done)
	return result, tested.Load(), time.Since(start)
}

func (d *Dispatcher) reportProgress(start time.Time, tested *atomic.Uint64, total uint64, done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			d.Progress(tested.Load(), total, time.Since(start))
		}
	}
}
