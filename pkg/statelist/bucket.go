// Package statelist holds the candidate (odd, even) state pairs produced by
// the (out-of-scope) state-space reduction stage and consumed by the bucket
// cracker.
package statelist

// Bucket is one group of candidate states sharing a common odd half: Odd is
// scalar (one 24-bit half-state), Even lists every candidate even half that
// paired with it. This replaces the original's statelist_t linked list with
// a flat, indexable value (design note: buckets form a slice, not a cyclic
// list).
type Bucket struct {
	Odd  uint32
	Even []uint32
}

// Buckets builds the []Bucket slice the dispatcher partitions across
// workers from a list of odd halves and a map from each odd half to its
// even halves: one Bucket per entry of odds, in order. It does not
// deduplicate odds; a repeated odd value yields a repeated Bucket.
func Buckets(odds []uint32, evensByOdd map[uint32][]uint32) []Bucket {
	out := make([]Bucket, 0, len(odds))
	for _, odd := range odds {
		out = append(out, Bucket{Odd: odd, Even: evensByOdd[odd]})
	}
	return out
}

// Count returns the total number of (odd, even) candidate pairs across all
// buckets — the num_keys_tested upper bound for a full sweep.
func Count(buckets []Bucket) int {
	n := 0
	for _, b := range buckets {
		n += len(b.Even)
	}
	return n
}
