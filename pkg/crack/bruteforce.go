package crack

import (
	"context"
	"errors"
	"time"

	"github.com/mfcuk/hardnested-core/pkg/noncetable"
	"github.com/mfcuk/hardnested-core/pkg/statelist"
)

// ErrNoCandidates is returned when BruteForceBS is given an empty candidate
// statelist — there is nothing to test, distinct from NoKeyFound (testing
// ran but nothing matched).
var ErrNoCandidates = errors.New("crack: no candidate states")

// Option configures BruteForceBS, matching brute_force_bs's thread-count
// and progress-reporting parameters without growing its signature further.
type Option func(*bruteForceConfig)

type bruteForceConfig struct {
	workers  int
	progress func(tested, total uint64, elapsed time.Duration)
}

// WithWorkers sets the number of worker goroutines (0, the default, means
// runtime.NumCPU(), matching num_cpus()).
func WithWorkers(n int) Option {
	return func(c *bruteForceConfig) { c.workers = n }
}

// WithProgress installs a callback polled roughly every 10 seconds with the
// cumulative tested/total candidate counts, matching
// hardnested_print_progress's role.
func WithProgress(fn func(tested, total uint64, elapsed time.Duration)) Option {
	return func(c *bruteForceConfig) { c.progress = fn }
}

// BruteForceBS is the top-level entry point matching brute_force_bs: given
// a reduced candidate statelist, the tag UID, the full batch of observed
// nonces, and the ranked best-first-bytes array, it prepares the bit-sliced
// test nonces for bestFirstBytes[0] and dispatches CrackBucket across
// workers, tagging any found key with trgBlock/trgKey.
func BruteForceBS(ctx context.Context, candidates []statelist.Bucket, cuid uint32, nonces *noncetable.List, bestFirstBytes []byte, trgBlock, trgKey byte, opts ...Option) (Result, error) {
	if statelist.Count(candidates) == 0 {
		return Result{}, ErrNoCandidates
	}
	if len(bestFirstBytes) == 0 {
		return Result{}, errors.New("crack: bestFirstBytes must not be empty")
	}

	cfg := bruteForceConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	tn := noncetable.PrepareTestNonces(nonces, bestFirstBytes[0])

	d := Dispatcher{NumWorkers: cfg.workers, Progress: cfg.progress}
	result, _, _ := d.Run(ctx, candidates, tn, nonces, cuid, bestFirstBytes)
	result.Block = trgBlock
	result.IsB = trgKey != 0
	return result, nil
}
