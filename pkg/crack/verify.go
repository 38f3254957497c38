// Package crack implements the bucket cracker and thread dispatcher: the
// two components that turn a bit-sliced filter survivor into a verified,
// reconstructed 48-bit key.
package crack

import (
	"github.com/mfcuk/hardnested-core/pkg/crypto1"
	"github.com/mfcuk/hardnested-core/pkg/noncetable"
)

// consumedByte is the actual plaintext byte clocked into the cipher for the
// best first byte: the tag UID's top byte XORed with the observed nonce
// byte, matching `(cuid >> 24) ^ best_first_bytes[0]`. Every other first
// byte's own chain is decrypted raw, with no cuid fold-in (the original
// comments this XOR out for bytes 1..3; only byte 0 carries it).
func consumedByte(cuid uint32, bestFirstBytes []byte) byte {
	return byte(cuid>>24) ^ bestFirstBytes[0]
}

// VerifyKey replays every independently observed nonce chain other than
// bestFirstBytes[0]'s own (ranks 1..255 of the ranked bestFirstBytes array,
// per spec.md §6 and hardnested_bruteforce.c's verify_key) against the
// candidate, confirming every transmitted parity bit on every nonce in
// every chain matches — no per-chain or per-rank cap, matching
// verify_key's uncapped `while (test_nonce != NULL)` walk. odd/even are the
// state *after* bestFirstBytes[0] has already been clocked in (the same
// post-consumption convention crack_states_bitsliced_AVX uses): VerifyKey
// rolls that back with consumedByte(cuid, bestFirstBytes) before replaying
// each other chain, and again to reconstruct the returned key.
func VerifyKey(cuid uint32, nonces *noncetable.List, bestFirstBytes []byte, odd, even uint32) (key uint64, ok bool) {
	consumed := consumedByte(cuid, bestFirstBytes)
	checked := 0
	for rank := 1; rank < len(bestFirstBytes); rank++ {
		chain := nonces.Chain(bestFirstBytes[rank])
		for _, rec := range chain {
			state := crypto1.State{Odd: odd, Even: even}
			state.RollbackByte(consumed, true)
			if !matchesRecord(&state, bestFirstBytes[rank], rec) {
				return 0, false
			}
			checked++
		}
	}
	if checked == 0 {
		return 0, false
	}

	final := crypto1.State{Odd: odd, Even: even}
	final.RollbackByte(consumed, true)
	return final.GetLFSR(), true
}

// matchesRecord decrypts one observed nonce's 4 bytes through state and
// checks every transmitted parity bit, consuming (and mutating) state the
// way crypto1_byte consumes the cipher's keystream as it clocks forward.
func matchesRecord(state *crypto1.State, firstByte byte, rec noncetable.Record) bool {
	bytes := [4]byte{
		firstByte,
		byte(rec.NonceEnc >> 16),
		byte(rec.NonceEnc >> 8),
		byte(rec.NonceEnc),
	}
	for i, enc := range bytes {
		dec := state.Byte(enc, true)
		wantParity := rec.ParEnc&(1<<uint(i)) != 0
		gotParity := crypto1.EvenParity8(enc) != crypto1.EvenParity8(dec)
		if gotParity != wantParity {
			return false
		}
	}
	return true
}
