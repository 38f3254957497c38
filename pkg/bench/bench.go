// Package bench reads, writes and synthesizes brute-force benchmark data
// sets, the counterpart of the original's bf_bench_data_bin (its binary
// layout differs from that blob's; see Decode).
package bench

import (
	"encoding/binary"
	"io"

	"github.com/mfcuk/hardnested-core/pkg/noncetable"
)

// Size is TEST_BENCH_SIZE: the fixed number of nonces and candidate states
// a benchmark run exercises.
const Size = 6000

// Data is the decoded form of bf_bench_data_bin: a batch of observed
// nonces plus candidate (odd, even) half-states to race the dispatcher
// against.
type Data struct {
	Nonces []noncetable.Record
	Odd    []uint32
	Even   []uint32
}

type nonceWire struct {
	NonceEnc uint32
	ParEnc   uint32
}

// Decode reads the little-endian layout Encode writes: a uint32 nonce
// count, that many (uint32 nonce, uint32 parity bits) records, a uint32
// state count, then that many interleaved (odd, even) uint32 pairs. Each
// record's parity bits take a full 32-bit word, and the states are stored
// pair by pair, not as a block of all even halves followed by a block of
// all odd halves.
func Decode(r io.Reader) (Data, error) {
	var d Data

	var nNonces uint32
	if err := binary.Read(r, binary.LittleEndian, &nNonces); err != nil {
		return Data{}, err
	}
	d.Nonces = make([]noncetable.Record, nNonces)
	for i := range d.Nonces {
		var raw nonceWire
		if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
			return Data{}, err
		}
		d.Nonces[i] = noncetable.Record{NonceEnc: raw.NonceEnc, ParEnc: uint8(raw.ParEnc)}
	}

	var nStates uint32
	if err := binary.Read(r, binary.LittleEndian, &nStates); err != nil {
		return Data{}, err
	}
	d.Odd = make([]uint32, nStates)
	d.Even = make([]uint32, nStates)
	for i := range d.Odd {
		var pair [2]uint32
		if err := binary.Read(r, binary.LittleEndian, &pair); err != nil {
			return Data{}, err
		}
		d.Odd[i], d.Even[i] = pair[0], pair[1]
	}
	return d, nil
}

// Encode writes Data back out in the layout Decode reads.
func Encode(w io.Writer, d Data) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(d.Nonces))); err != nil {
		return err
	}
	for _, n := range d.Nonces {
		raw := nonceWire{NonceEnc: n.NonceEnc, ParEnc: uint32(n.ParEnc)}
		if err := binary.Write(w, binary.LittleEndian, raw); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(d.Odd))); err != nil {
		return err
	}
	for i := range d.Odd {
		pair := [2]uint32{d.Odd[i], d.Even[i]}
		if err := binary.Write(w, binary.LittleEndian, pair); err != nil {
			return err
		}
	}
	return nil
}

// Synthesize deterministically generates Size nonces and candidate states
// for the benchmark command when no captured blob is supplied. It
// pads nothing (always emits exactly Size of each) — the original's
// padding-by-repeating-the-last-state only applies to a short captured
// blob, not a freshly synthesized one.
func Synthesize(seed uint64) Data {
	d := Data{
		Nonces: make([]noncetable.Record, Size),
		Odd:    make([]uint32, Size),
		Even:   make([]uint32, Size),
	}
	x := seed | 1
	next := func() uint64 {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		return x
	}
	for i := 0; i < Size; i++ {
		v := next()
		d.Nonces[i] = noncetable.Record{NonceEnc: uint32(v), ParEnc: uint8(v >> 32)}
		d.Odd[i] = uint32(next()) & 0xFFFFFF
		d.Even[i] = uint32(next()) & 0xFFFFFF
	}
	return d
}
