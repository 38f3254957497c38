package crypto1

import "github.com/mfcuk/hardnested-core/pkg/bitslice"

// StateSize and KeystreamSize match STATE_SIZE/KEYSTREAM_SIZE in the
// original core: a 48-bit register, clocked through 24 keystream bits (3
// nonce bytes' worth) per test nonce.
const (
	StateSize     = 48
	KeystreamSize = 24
	windowSize    = KeystreamSize + StateSize // 72
)

// Evaluator runs the Crypto-1 LFSR and filter function across up to
// bitslice.Lanes candidate states in lockstep, evaluating every test nonce
// against a single loaded candidate block. The 48-bit register is
// represented as a window of windowSize Vectors addressed through an
// explicit head index (design note: replaces the original's `state_p--`
// pointer walk with a bounds-checked index into a fixed array), where
// window[head+2*i] is the even register's bit i and window[head+2*i+1] is
// the odd register's bit i, for i in 0..23.
type Evaluator struct {
	window [windowSize]bitslice.Vector
	head   int

	// ksAtDepth/fbAtDepth/parAtDepth snapshot the keystream, feedback and
	// running-parity vectors at each depth 0..8, depth being the number of
	// keystream bits of the current nonce clocked so far
	// (crypto1_bs_f20b_2/3's role in the original core, generalized here to
	// the keystream/feedback/parity vectors themselves rather than the f20b
	// sub-terms alone): a nonce that shares a keystream prefix with the one
	// just evaluated resumes from the cached depth instead of re-running the
	// shared bits from scratch — see RunNonce's commonBits handling.
	ksAtDepth  [9]bitslice.Vector
	fbAtDepth  [9]bitslice.Vector
	parAtDepth [9]bitslice.Vector
}

// Load resets the evaluator with a fresh candidate block: oddState is the
// (scalar) odd half shared by every lane this call, evenBlock is the
// bit-sliced even half, one Vector per bit, 24 wide.
func (e *Evaluator) Load(oddState uint32, evenBlock [24]bitslice.Vector) {
	e.head = KeystreamSize
	for i := 0; i < 24; i++ {
		e.window[KeystreamSize+2*i] = evenBlock[i]
		e.window[KeystreamSize+2*i+1] = bitslice.Broadcast(oddState&(1<<uint(i)) != 0)
	}
}

func (e *Evaluator) even(i int) bitslice.Vector { return e.window[e.head+2*i] }
func (e *Evaluator) odd(i int) bitslice.Vector  { return e.window[e.head+2*i+1] }

func (e *Evaluator) evenWindow() (w [24]bitslice.Vector) {
	for i := range w {
		w[i] = e.even(i)
	}
	return w
}

func (e *Evaluator) oddWindow() (w [24]bitslice.Vector) {
	for i := range w {
		w[i] = e.odd(i)
	}
	return w
}

func (e *Evaluator) filter() bitslice.Vector {
	return FilterBS(e.evenWindow(), e.oddWindow())
}

func (e *Evaluator) feedback() bitslice.Vector {
	fb := bitslice.Zero
	for _, i := range oddFeedbackBits {
		fb = fb.Xor(e.odd(i))
	}
	for _, i := range evenFeedbackBits {
		fb = fb.Xor(e.even(i))
	}
	return fb
}

// step clocks the register by one bit, folding both the filter output and
// the actual transmitted bit `in` back into the feedback (communication
// mode, always true once nonce suck-in has started — matching
// crack_states_bitsliced's inner loop), and returns the keystream Vector
// produced before clocking.
func (e *Evaluator) step(in bitslice.Vector) (ks, fb bitslice.Vector) {
	ks = e.filter()
	fb = e.feedback().Xor(ks).Xor(in)
	e.head--
	e.window[e.head] = fb
	return ks, fb
}

// ConsumeByte clocks the window forward through one byte that every lane
// and every test nonce shares — the best first byte, already fixed by the
// time bit-slicing starts (see the Open Question on verify_key's
// test_first_byte=1 in SPEC_FULL.md) — so RunNonce's keystream bits line up
// with encrypted byte 1 onward exactly like VerifyKey's scalar replay does.
func (e *Evaluator) ConsumeByte(in uint8) {
	for i := 7; i >= 0; i-- {
		bit := bitslice.Broadcast((in>>uint(i))&1 != 0)
		e.step(bit)
	}
}

// cacheDepth saves the state needed to resume evaluation once `depth`
// keystream bits of the current nonce have been clocked, the way the original caches fbb/ksb/par so the
// next test nonce can jump in at the point it starts to diverge from this
// one (see RunNonce's commonBits handling).
func (e *Evaluator) cacheDepth(depth int, ks, fb, par bitslice.Vector) {
	if depth <= 8 {
		e.ksAtDepth[depth] = ks
		e.fbAtDepth[depth] = fb
		e.parAtDepth[depth] = par
	}
}

// RunNonce evaluates one test nonce's 24 keystream bits against the
// currently loaded candidate block, restarting from `commonBits` cached
// depth if the caller has already evaluated a shared prefix with a prior
// nonce (cross-nonce prefix reuse, spec section on prepare_bf_test_nonces'
// ordering heuristic). It returns, for every byte boundary, the parity
// match vector ANDed into `alive`; survivors are lanes whose parity bits for
// encrypted bytes 1..3 match on every nonce tested so far.
func (e *Evaluator) RunNonce(nonce noncetableEncrypted, commonBits int, alive bitslice.Vector) bitslice.Vector {
	parityAcc := bitslice.Zero
	if commonBits > 0 && commonBits <= 8 {
		e.head = KeystreamSize - commonBits
		parityAcc = e.parAtDepth[commonBits]
	}

	for bit := KeystreamSize - 1 - commonBits; bit >= 0; bit-- {
		ksIdx := bit
		inBit := nonce.Bit(KeystreamSize - 1 - ksIdx)
		inVec := bitslice.Broadcast(inBit)
		ks, fb := e.step(inVec)
		decrypted := ks.Xor(inVec)
		parityAcc = parityAcc.Xor(decrypted)

		if ksIdx&0x07 == 0 {
			byteIdx := 3 - ksIdx/8
			expected := nonce.ParityBit(byteIdx)
			alive = alive.And(parityAcc.Xor(bitslice.Broadcast(expected)).Not())
			parityAcc = bitslice.Zero
			if alive.IsZero() {
				return alive
			}
		}

		e.cacheDepth(KeystreamSize-ksIdx, ks, fb, parityAcc)
	}
	return alive
}

// noncetableEncrypted is the minimal view RunNonce needs of a bit-sliced
// test nonce: its 24 keystream input bits and the 3 expected parity bits
// that land on byte boundaries (bits 8/16/24 of the 24-bit window — the
// fourth parity bit belongs to the best-first-byte already consumed before
// bit-slicing starts, per the Open Question on verify_key's
// test_first_byte=1).
type noncetableEncrypted interface {
	Bit(i int) bool
	ParityBit(byteIdx int) bool
}
