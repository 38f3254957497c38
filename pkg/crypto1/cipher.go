// Package crypto1 implements the Crypto-1 stream cipher: a scalar reference
// (used for verification and key reconstruction, where bit-slicing buys
// nothing since it only ever runs once per surviving candidate) and a
// bit-sliced evaluator (Evaluator, in bitsliced.go) that runs the same LFSR
// and filter function across 128 candidate states at once.
package crypto1

// State is the 48-bit Crypto-1 LFSR, split into its even and odd halves (24
// bits each, low bits significant). This is the representation the original
// core keeps throughout: two 24-bit registers rather than one 48-bit one,
// because the filter function and feedback polynomial are themselves
// naturally split along the same even/odd line.
type State struct {
	Even, Odd uint32
}

const stateMask24 = 1<<24 - 1

// OddFeedbackMask is LF_POLY_ODD, the feedback polynomial's odd-indexed
// taps, taken directly from the original core's
// `evenparity32(o & 0x29ce5c)`.
//
// EvenFeedbackMask is LF_POLY_EVEN, derived from the feedback polynomial's
// even-indexed tap positions {0,10,12,14,24,42}. Each tap k maps to a
// register-local bit index via floor((47-k)/2) = (47-k-1)/2 (integer
// division, matching `lstate_p[(47-k)/2]` in the original core), giving
// indices {23,18,17,16,11,2} — not the naive k/2 halving.
const (
	OddFeedbackMask  uint32 = 0x29CE5C
	EvenFeedbackMask uint32 = 0x870804
)

// oddFeedbackBits and evenFeedbackBits are OddFeedbackMask/EvenFeedbackMask
// expanded into register bit-index lists, built once the way the teacher
// precomputes its flag lookup tables in an init() rather than hand-listing
// the indices, so the list can never drift out of sync with the mask.
var oddFeedbackBits, evenFeedbackBits []int

func init() {
	for i := 0; i < 24; i++ {
		if OddFeedbackMask&(1<<uint(i)) != 0 {
			oddFeedbackBits = append(oddFeedbackBits, i)
		}
		if EvenFeedbackMask&(1<<uint(i)) != 0 {
			evenFeedbackBits = append(evenFeedbackBits, i)
		}
	}
}

// EvenParity32 XORs together all 32 bits of x.
func EvenParity32(x uint32) bool {
	x ^= x >> 16
	x ^= x >> 8
	x ^= x >> 4
	x ^= x >> 2
	x ^= x >> 1
	return x&1 != 0
}

// EvenParity8 XORs together the low 8 bits of x.
func EvenParity8(x uint8) bool {
	x ^= x >> 4
	x ^= x >> 2
	x ^= x >> 1
	return x&1 != 0
}

// NewState loads a 48-bit key (6 bytes, MSB first over the wire) into a
// fresh LFSR, interleaving key bits into the even/odd halves the same way
// GetLFSR de-interleaves them — NewState and GetLFSR round-trip.
func NewState(key [6]byte) State {
	var lfsr uint64
	for _, b := range key {
		lfsr = lfsr<<8 | uint64(b)
	}
	var s State
	for i := 0; i < 24; i++ {
		if lfsr&(1<<uint(2*i)) != 0 {
			s.Even |= 1 << uint(i)
		}
		if lfsr&(1<<uint(2*i+1)) != 0 {
			s.Odd |= 1 << uint(i)
		}
	}
	return s
}

// GetLFSR returns the combined 48-bit register value (crypto1_get_lfsr):
// even[i] at bit 2i, odd[i] at bit 2i+1.
func (s State) GetLFSR() uint64 {
	var lfsr uint64
	for i := 0; i < 24; i++ {
		if s.Even&(1<<uint(i)) != 0 {
			lfsr |= 1 << uint(2*i)
		}
		if s.Odd&(1<<uint(i)) != 0 {
			lfsr |= 1 << uint(2*i+1)
		}
	}
	return lfsr
}

// Feedback computes the LFSR's next feedback bit from the current state.
func (s State) Feedback() bool {
	return EvenParity32(s.Odd&OddFeedbackMask) != EvenParity32(s.Even&EvenFeedbackMask)
}

// FilterBit computes the cipher's current keystream/filter output bit.
func (s State) FilterBit() bool {
	return Filter(s.Even, s.Odd)
}

// Step clocks the cipher by one bit. `in` is the bit being authenticated or
// fed in (a nonce bit during initialization, a plaintext/ciphertext bit
// during communication); useOutput folds the filter's own output back into
// the feedback, matching crypto1_bit's is_encrypted flag — true once the
// cipher is in communication mode, false while still suck-ing in the nonce.
// Step returns the keystream bit produced before clocking.
func (s *State) Step(in, useOutput bool) bool {
	ks := s.FilterBit()
	fb := s.Feedback() != in
	if useOutput {
		fb = fb != ks
	}
	newEven := s.Odd
	newOdd := (s.Even >> 1) & stateMask24
	if fb {
		newOdd |= 1 << 23
	}
	s.Even, s.Odd = newEven, newOdd
	return ks
}

// Byte clocks 8 bits MSB-first through the cipher and returns the
// decrypted/encrypted byte (bit XOR keystream), matching crypto1_byte.
func (s *State) Byte(in uint8, useOutput bool) uint8 {
	var out uint8
	for i := 7; i >= 0; i-- {
		bit := (in>>uint(i))&1 != 0
		ks := s.Step(bit, useOutput)
		if bit != ks {
			out |= 1 << uint(i)
		}
	}
	return out
}

// RollbackByte is Byte's inverse: given the 8 most recently produced
// input/output bits, it walks the LFSR backward one clock per bit,
// reconstructing the state the cipher held 8 clocks ago, matching
// lfsr_rollback_byte. Bits are undone in reverse chronological order (the
// most recently clocked bit, the byte's bit 0, first).
func (s *State) RollbackByte(in uint8, useOutput bool) uint8 {
	var out uint8
	for i := 0; i <= 7; i++ {
		bit := (in>>uint(i))&1 != 0
		ks := s.rollbackBit(bit, useOutput)
		if bit != ks {
			out |= 1 << uint(i)
		}
	}
	return out
}

// rollbackBit undoes one Step. newEven/newOdd are the state Step left
// behind; oldOdd is recovered directly (newEven==oldOdd), oldEven's upper
// 23 bits are recovered directly from newOdd, and oldEven's bit 0 — the bit
// Step dropped off the register — is solved from the feedback equation,
// which Filter is constructed to never need in order to compute ks.
func (s *State) rollbackBit(in, useOutput bool) bool {
	oldOdd := s.Even
	partialEven := (s.Odd & 0x7FFFFF) << 1
	fb := (s.Odd>>23)&1 != 0

	ks := Filter(partialEven, oldOdd)
	target := fb
	if useOutput {
		target = target != ks
	}
	target = target != in

	oddParity := EvenParity32(oldOdd & OddFeedbackMask)
	evenParityNoBit0 := EvenParity32(partialEven & EvenFeedbackMask)
	bit0 := (target != oddParity) != evenParityNoBit0

	oldEven := partialEven
	if bit0 {
		oldEven |= 1
	}
	s.Even, s.Odd = oldEven, oldOdd
	return ks
}
