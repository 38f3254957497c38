package crypto1_test

import (
	"testing"

	"github.com/mfcuk/hardnested-core/pkg/bitslice"
	"github.com/mfcuk/hardnested-core/pkg/crypto1"
	"github.com/mfcuk/hardnested-core/pkg/noncetable"
)

// record replays firstByte followed by tail through a scalar state in
// communication mode, producing the observed nonce/parity pair exactly as
// a real capture would, for bestFirstByte == firstByte.
func record(state crypto1.State, firstByte byte, tail [3]byte) noncetable.Record {
	s := state
	bytes := [4]byte{firstByte, tail[0], tail[1], tail[2]}
	var par uint8
	var nonceEnc uint32
	for i, b := range bytes {
		dec := s.Byte(b, true)
		if crypto1.EvenParity8(b) != crypto1.EvenParity8(dec) {
			par |= 1 << uint(i)
		}
		nonceEnc = nonceEnc<<8 | uint32(b)
	}
	return noncetable.Record{NonceEnc: nonceEnc, ParEnc: par}
}

func TestEvaluatorMatchesScalarReplay(t *testing.T) {
	key := [6]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	trueState := crypto1.NewState(key)
	firstByte := byte(0x42)
	rec := record(trueState, firstByte, [3]byte{0xDE, 0xAD, 0xBE})

	list := &noncetable.List{}
	list.Add(rec)
	tn := noncetable.PrepareTestNonces(list, firstByte)
	if len(tn.Nonces) != 1 {
		t.Fatalf("expected 1 test nonce, got %d", len(tn.Nonces))
	}

	// lane 0 holds the true even half, every other lane a wrong guess.
	evenCandidates := make([]uint32, bitslice.Lanes)
	evenCandidates[0] = trueState.Even
	for i := 1; i < bitslice.Lanes; i++ {
		evenCandidates[i] = trueState.Even ^ uint32(i)
	}
	evenVecs, _ := bitslice.Transpose(evenCandidates, 24)
	var evenArr [24]bitslice.Vector
	copy(evenArr[:], evenVecs)

	var eval crypto1.Evaluator
	eval.Load(trueState.Odd, evenArr)
	eval.ConsumeByte(firstByte)
	alive := eval.RunNonce(tn.Nonces[0], tn.CommonBits[0], bitslice.Ones)

	if !alive.Bit(0) {
		t.Fatal("the true even candidate (lane 0) should survive bit-sliced evaluation")
	}
	for lane := 1; lane < bitslice.Lanes; lane++ {
		if alive.Bit(lane) {
			t.Fatalf("lane %d: a wrong even candidate survived (even=%06x)", lane, evenCandidates[lane])
		}
	}
}

func TestEvaluatorCrossNoncePrefixReuse(t *testing.T) {
	key := [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	trueState := crypto1.NewState(key)
	firstByte := byte(0x07)

	recA := record(trueState, firstByte, [3]byte{0x01, 0x02, 0x03})
	recB := record(trueState, firstByte, [3]byte{0x01, 0x02, 0xFF})

	list := &noncetable.List{}
	list.Add(recA)
	list.Add(recB)
	tn := noncetable.PrepareTestNonces(list, firstByte)
	if len(tn.Nonces) != 2 {
		t.Fatalf("expected 2 test nonces, got %d", len(tn.Nonces))
	}

	evenVecs, _ := bitslice.Transpose([]uint32{trueState.Even}, 24)
	var evenArr [24]bitslice.Vector
	copy(evenArr[:], evenVecs)

	var eval crypto1.Evaluator
	eval.Load(trueState.Odd, evenArr)
	eval.ConsumeByte(firstByte)
	alive := bitslice.Ones
	for i, nonce := range tn.Nonces {
		alive = eval.RunNonce(nonce, tn.CommonBits[i], alive)
	}
	if !alive.Bit(0) {
		t.Fatal("the true state should survive both test nonces, including the cached-prefix one")
	}
}

// TestEvaluatorCrossNoncePrefixReuseSubByteCommonBits exercises the cache at
// a non-byte-aligned depth (commonBits == 3, not 8 or 0): the second bytes
// 0x00 and 0x08 differ only in bit 3, so they agree on the 3 bits below it
// and trailingZeros(0x00^0x08) == 3. This is the prefix length
// TestEvaluatorCrossNoncePrefixReuse cannot reach, since its second bytes
// are byte-identical (commonBits forced to 8).
func TestEvaluatorCrossNoncePrefixReuseSubByteCommonBits(t *testing.T) {
	key := [6]byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}
	trueState := crypto1.NewState(key)
	firstByte := byte(0x11)

	recA := record(trueState, firstByte, [3]byte{0x00, 0xAA, 0xBB})
	recB := record(trueState, firstByte, [3]byte{0x08, 0xCC, 0xDD})

	list := &noncetable.List{}
	list.Add(recA)
	list.Add(recB)
	tn := noncetable.PrepareTestNonces(list, firstByte)
	if len(tn.Nonces) != 2 {
		t.Fatalf("expected 2 test nonces, got %d", len(tn.Nonces))
	}
	if tn.CommonBits[1] != 3 {
		t.Fatalf("expected commonBits 3 for this pair, got %d", tn.CommonBits[1])
	}

	evenVecs, _ := bitslice.Transpose([]uint32{trueState.Even}, 24)
	var evenArr [24]bitslice.Vector
	copy(evenArr[:], evenVecs)

	var eval crypto1.Evaluator
	eval.Load(trueState.Odd, evenArr)
	eval.ConsumeByte(firstByte)
	alive := bitslice.Ones
	for i, nonce := range tn.Nonces {
		alive = eval.RunNonce(nonce, tn.CommonBits[i], alive)
	}
	if !alive.Bit(0) {
		t.Fatal("the true state should survive both test nonces at a non-byte-aligned common prefix")
	}
}
