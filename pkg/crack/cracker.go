package crack

import (
	"sync/atomic"

	"github.com/mfcuk/hardnested-core/pkg/bitslice"
	"github.com/mfcuk/hardnested-core/pkg/crypto1"
	"github.com/mfcuk/hardnested-core/pkg/noncetable"
	"github.com/mfcuk/hardnested-core/pkg/statelist"
)

// DefaultBruteForceRate is the rate reported when no benchmark data is
// available (BenchmarkDataUnavailable degrades rather than fails, per
// SPEC_FULL.md §7), matching DEFAULT_BRUTE_FORCE_RATE.
const DefaultBruteForceRate = 1.2e8

// Result is what CrackBucket, Dispatcher and BruteForceBS report back: a
// found key, or nothing (NoKeyFound is a normal false return, never an
// error). Block/IsB identify which sector key slot the key belongs to,
// carried through from BruteForceBS's trgBlock/trgKey so callers can hand
// the result straight to keystore.Key.
type Result struct {
	Found bool
	Key   uint64
	Block uint8
	IsB   bool
}

// CrackBucket bit-slice tests every even candidate in bucket against the
// prepared test nonces, 128 at a time, and verifies+reconstructs the key
// for any survivor, matching crack_states_bitsliced's block loop plus its
// verify_key call. cuid and the ranked bestFirstBytes (index 0 is the byte
// already bit-sliced into tn) are threaded straight through to VerifyKey.
func CrackBucket(bucket statelist.Bucket, tn noncetable.TestNonces, allNonces *noncetable.List, cuid uint32, bestFirstBytes []byte, tested *atomic.Uint64) (Result, bool) {
	if len(tn.Nonces) == 0 || len(bucket.Even) == 0 {
		return Result{}, false
	}

	consumed := consumedByte(cuid, bestFirstBytes)

	var eval crypto1.Evaluator
	for start := 0; start < len(bucket.Even); start += bitslice.Lanes {
		end := start + bitslice.Lanes
		if end > len(bucket.Even) {
			end = len(bucket.Even)
		}
		block := bucket.Even[start:end]

		evenVecs, liveLanes := bitslice.Transpose(block, 24)
		var evenArr [24]bitslice.Vector
		copy(evenArr[:], evenVecs)

		eval.Load(bucket.Odd, evenArr)
		eval.ConsumeByte(consumed)
		alive := bitslice.Ones
		for i, nonce := range tn.Nonces {
			alive = eval.RunNonce(nonce, tn.CommonBits[i], alive)
			if alive.IsZero() {
				break
			}
		}
		tested.Add(uint64(len(block)))

		if alive.IsZero() {
			continue
		}
		for lane := 0; lane < liveLanes; lane++ {
			if !alive.Bit(lane) {
				continue
			}
			// VerifyKey expects the state *after* consuming bestFirstBytes[0],
			// the same convention the bit-sliced window above just advanced
			// through: reproduce that scalarly for this one surviving lane.
			post := crypto1.State{Odd: bucket.Odd, Even: block[lane]}
			post.Byte(consumed, true)
			if key, ok := VerifyKey(cuid, allNonces, bestFirstBytes, post.Odd, post.Even); ok {
				return Result{Found: true, Key: key}, true
			}
		}
	}
	return Result{}, false
}
