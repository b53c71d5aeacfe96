package bpe

import "fmt"

// Merge is one entry of the merge table: every adjacent occurrence of Pair is replaced
// by the token ID.
type Merge struct {
	Pair Pair
	ID   int
}

// String implements fmt.Stringer.
func (m Merge) String() string {
	return fmt.Sprintf("%s -> %d", m.Pair, m.ID)
}

// ApplyMerge returns a new sequence where every non-overlapping occurrence of pair,
// scanning left to right, is replaced by newID.
//
// After a replacement the scan resumes past the replaced pair, so [A, A, A] merging
// (A, A) yields [new, A]. The result is never longer than ids, and ids is not modified.
func ApplyMerge(ids []int, pair Pair, newID int) []int {
	out := make([]int, 0, len(ids))
	for ii := 0; ii < len(ids); {
		if ii < len(ids)-1 && ids[ii] == pair.Left && ids[ii+1] == pair.Right {
			out = append(out, newID)
			ii += 2
			continue
		}
		out = append(out, ids[ii])
		ii++
	}
	return out
}
