package bpe

import "fmt"

// Pair is an ordered pair of adjacent token ids.
type Pair struct {
	Left, Right int
}

// String implements fmt.Stringer.
func (p Pair) String() string {
	return fmt.Sprintf("(%d, %d)", p.Left, p.Right)
}

// MostFrequentPair counts every adjacent pair (ids[i], ids[i+1]) and returns the one
// with the highest count, along with the count.
//
// Ties go to the pair whose first occurrence comes earliest in ids. It returns
// ok=false if ids has fewer than 2 elements.
func MostFrequentPair(ids []int) (pair Pair, count int, ok bool) {
	if len(ids) < 2 {
		return Pair{}, 0, false
	}

	// firstSeen keeps pairs in first-occurrence order, for the tie-break.
	counts := make(map[Pair]int)
	var firstSeen []Pair
	for ii := 0; ii < len(ids)-1; ii++ {
		p := Pair{ids[ii], ids[ii+1]}
		if counts[p] == 0 {
			firstSeen = append(firstSeen, p)
		}
		counts[p]++
	}

	for _, p := range firstSeen {
		if c := counts[p]; c > count {
			pair, count = p, c
		}
	}
	return pair, count, true
}
