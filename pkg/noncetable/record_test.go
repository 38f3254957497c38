package noncetable

import "testing"

func TestListAddChainOrdersOldestFirst(t *testing.T) {
	l := &List{}
	recA := Record{NonceEnc: 0x05000001, ParEnc: 0x1}
	recB := Record{NonceEnc: 0x05000002, ParEnc: 0x2}
	l.Add(recA)
	l.Add(recB)

	chain := l.Chain(0x05)
	if len(chain) != 2 {
		t.Fatalf("expected 2 records in chain, got %d", len(chain))
	}
	if chain[0] != recA || chain[1] != recB {
		t.Fatalf("expected oldest-first order [A, B], got %+v", chain)
	}
}

func TestListChainEmptyForUnseenFirstByte(t *testing.T) {
	l := &List{}
	l.Add(Record{NonceEnc: 0x01000000})
	if chain := l.Chain(0x02); len(chain) != 0 {
		t.Fatalf("expected empty chain, got %d records", len(chain))
	}
}

func TestTestNonceBitMatchesNonceBytes(t *testing.T) {
	rec := Record{NonceEnc: 0xAA123456, ParEnc: 0}
	tn := TestNonce{rec: rec}
	// bit 0 is the MSB of encrypted byte 1 (0x12).
	if got := tn.Bit(0); got != (0x12&0x80 != 0) {
		t.Fatalf("Bit(0) = %v, want MSB of 0x12", got)
	}
	// bit 23 is the LSB of encrypted byte 3 (0x56).
	if got := tn.Bit(23); got != (0x56&0x01 != 0) {
		t.Fatalf("Bit(23) = %v, want LSB of 0x56", got)
	}
}

func TestTestNonceParityBit(t *testing.T) {
	tn := TestNonce{rec: Record{ParEnc: 0b0000_1010}}
	if tn.ParityBit(1) {
		t.Fatal("ParityBit(1) should be false")
	}
	if !tn.ParityBit(3) {
		t.Fatal("ParityBit(3) should be true")
	}
}

func TestTrailingZeros(t *testing.T) {
	cases := map[byte]int{0: 8, 1: 0, 2: 1, 4: 2, 8: 3, 0xFF: 0, 0x80: 7}
	for b, want := range cases {
		if got := trailingZeros(b); got != want {
			t.Fatalf("trailingZeros(%#x) = %d, want %d", b, got, want)
		}
	}
}
