package crypto1

import "github.com/mfcuk/hardnested-core/pkg/bitslice"

// f20a, f20b and f20c are the nonlinear building blocks of the Crypto-1
// filter function f20, taken verbatim from the original's bit-sliced core
// (the boolean-minimized forms used there instead of a truth-table lookup).
func f20a(a, b, c, d bool) bool {
	return ((a || b) != (a && d)) != (c && ((a != b) || d))
}

func f20b(a, b, c, d bool) bool {
	return ((a && b) || c) != ((a != b) && (c || d))
}

func f20c(a, b, c, d, e bool) bool {
	return (a || ((b || e) && (d != e))) != ((a != (b && d)) && ((c != d) || (b && e)))
}

// The filter*Group variables name which 20 state bits (8 from the even half, 12 from the
// odd half) feed the filter function, grouped the way f20 is bit-sliced:
// two 4-bit groups folded by f20a, two 4-bit groups folded by f20b, and one
// more 4-bit group folded by f20a again, all five results folded by f20c.
//
// filterEvenGroup1/2 deliberately never reference even-register bit 0: that
// bit is the one rollback has to solve for (the bit that falls off the
// register each clock), and keeping it out of the filter's read set is what
// makes rollback's feedback equation solvable without knowing filter's
// output first.
var (
	filterEvenGroup1 = [4]int{1, 2, 3, 4}
	filterOddGroup1  = [4]int{0, 1, 2, 3}
	filterEvenGroup2 = [4]int{5, 6, 7, 8}
	filterOddGroup2  = [4]int{4, 5, 6, 7}
	filterOddGroup3  = [4]int{8, 9, 10, 11}
)

// Filter computes one Crypto-1 keystream bit from the 24-bit even and odd
// register halves, replaying f20's grouping on scalar bits.
func Filter(even, odd uint32) bool {
	e1 := bits4(even, filterEvenGroup1)
	o1 := bits4(odd, filterOddGroup1)
	e2 := bits4(even, filterEvenGroup2)
	o2 := bits4(odd, filterOddGroup2)
	o3 := bits4(odd, filterOddGroup3)

	a := f20a(e1[0], e1[1], e1[2], e1[3])
	b := f20a(o1[0], o1[1], o1[2], o1[3])
	c := f20b(e2[0], e2[1], e2[2], e2[3])
	d := f20b(o2[0], o2[1], o2[2], o2[3])
	e := f20a(o3[0], o3[1], o3[2], o3[3])
	return f20c(a, b, c, d, e)
}

func bits4(reg uint32, idx [4]int) [4]bool {
	var out [4]bool
	for i, b := range idx {
		out[i] = reg&(1<<uint(b)) != 0
	}
	return out
}

// f20aBS, f20bBS, f20cBS are the bit-sliced (Vector-wide) counterparts of
// f20a/f20b/f20c above, evaluating the same formula over all 128 lanes.
func f20aBS(a, b, c, d bitslice.Vector) bitslice.Vector {
	return a.Or(b).Xor(a.And(d)).Xor(c.And(a.Xor(b).Or(d)))
}

func f20bBS(a, b, c, d bitslice.Vector) bitslice.Vector {
	return a.And(b).Or(c).Xor(a.Xor(b).And(c.Or(d)))
}

func f20cBS(a, b, c, d, e bitslice.Vector) bitslice.Vector {
	left := a.Or(b.Or(e).And(d.Xor(e)))
	right := a.Xor(b.And(d)).And(c.Xor(d).Or(b.And(e)))
	return left.Xor(right)
}

// FilterBS computes one bit-sliced keystream Vector from the even and odd
// bit-sliced register halves (each a 24-slot window of Vectors), mirroring
// Filter's grouping exactly.
func FilterBS(even, odd [24]bitslice.Vector) bitslice.Vector {
	a := f20aBS(even[filterEvenGroup1[0]], even[filterEvenGroup1[1]], even[filterEvenGroup1[2]], even[filterEvenGroup1[3]])
	b := f20aBS(odd[filterOddGroup1[0]], odd[filterOddGroup1[1]], odd[filterOddGroup1[2]], odd[filterOddGroup1[3]])
	c := f20bBS(even[filterEvenGroup2[0]], even[filterEvenGroup2[1]], even[filterEvenGroup2[2]], even[filterEvenGroup2[3]])
	d := f20bBS(odd[filterOddGroup2[0]], odd[filterOddGroup2[1]], odd[filterOddGroup2[2]], odd[filterOddGroup2[3]])
	e := f20aBS(odd[filterOddGroup3[0]], odd[filterOddGroup3[1]], odd[filterOddGroup3[2]], odd[filterOddGroup3[3]])
	return f20cBS(a, b, c, d, e)
}
