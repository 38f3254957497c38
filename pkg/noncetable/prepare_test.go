package noncetable

import "testing"

func TestPrepareTestNoncesEmptyChain(t *testing.T) {
	l := &List{}
	tn := PrepareTestNonces(l, 0x05)
	if len(tn.Nonces) != 0 {
		t.Fatalf("expected no test nonces for an empty chain, got %d", len(tn.Nonces))
	}
}

func TestPrepareTestNoncesSingleRecord(t *testing.T) {
	l := &List{}
	l.Add(Record{NonceEnc: 0x05010203, ParEnc: 0x3})
	tn := PrepareTestNonces(l, 0x05)
	if len(tn.Nonces) != 1 {
		t.Fatalf("expected 1 test nonce, got %d", len(tn.Nonces))
	}
	if tn.CommonBits[0] != 0 {
		t.Fatalf("CommonBits[0] should always be 0, got %d", tn.CommonBits[0])
	}
}

func TestPrepareTestNoncesCapsAtMaxChosen(t *testing.T) {
	l := &List{}
	for i := 0; i < 10; i++ {
		l.Add(Record{NonceEnc: 0x05000000 | uint32(i)<<8, ParEnc: uint8(i)})
	}
	tn := PrepareTestNonces(l, 0x05)
	if len(tn.Nonces) != maxChosen {
		t.Fatalf("expected %d chosen nonces, got %d", maxChosen, len(tn.Nonces))
	}
}

func TestChooseOrderMaximizesTrailingZeroAgreement(t *testing.T) {
	// second bytes: 0x00 (tz=8), 0x00 (tz=8), 0x01 (tz=0) — pairing the two
	// 0x00s adjacently scores higher than separating them.
	chain := []Record{
		{NonceEnc: 0x05000100},
		{NonceEnc: 0x05010000},
		{NonceEnc: 0x05000000},
	}
	ordered := chooseOrder(chain, 3)
	gotScore := orderScore(ordered)
	bestPossible := orderScore([]Record{chain[0], chain[2], chain[1]})
	if gotScore < bestPossible {
		t.Fatalf("chooseOrder scored %d, a better ordering scores %d", gotScore, bestPossible)
	}
}

func TestPermutationsCount(t *testing.T) {
	items := []Record{{NonceEnc: 1}, {NonceEnc: 2}, {NonceEnc: 3}}
	perms := permutations(items)
	if len(perms) != 6 {
		t.Fatalf("expected 3! = 6 permutations, got %d", len(perms))
	}
}
