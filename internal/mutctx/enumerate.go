package mutctx

import "fmt"

// MaxFlank bounds table construction; a mutation table with flank 5 already
// enumerates 4^12 candidates.
const MaxFlank = 5

func checkFlank(flank int) error {
	if flank < 0 || flank > MaxFlank {
		return fmt.Errorf("flank %d out of range [0, %d]", flank, MaxFlank)
	}
	return nil
}

// product calls fn with every string of length n over Bases in lexicographic
// order. The buffer passed to fn is reused between calls.
func product(n int, fn func([]byte)) {
	buf := make([]byte, n)
	idx := make([]int, n)
	for i := range buf {
		buf[i] = Bases[0]
	}
	for {
		fn(buf)
		// odometer increment from the rightmost position
		i := n - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(Bases) {
				buf[i] = Bases[idx[i]]
				break
			}
			idx[i] = 0
			buf[i] = Bases[0]
		}
		if i < 0 {
			return
		}
	}
}

// MutationCandidates returns every mutation key for the flank width in
// enumeration order, self mutations included.
func MutationCandidates(flank int) []string {
	n := 2*flank + 2
	out := make([]string, 0, 1<<(2*n))
	product(n, func(b []byte) {
		out = append(out, FormatKey(string(b[:n-1]), b[n-1]))
	})
	return out
}

// MutationKeys returns the canonical mutation keys for the flank width in
// enumeration order.
func MutationKeys(flank int) ([]string, error) {
	if err := checkFlank(flank); err != nil {
		return nil, err
	}
	out := make([]string, 0, 3*(1<<(2*(2*flank+1)))/2)
	for _, key := range MutationCandidates(flank) {
		if !IsSelfMutation(key) && IsCanonical(key) {
			out = append(out, key)
		}
	}
	return out, nil
}

// SequenceKeys returns the canonical bare sequence keys of length 2*flank+1
// in enumeration order.
func SequenceKeys(flank int) ([]string, error) {
	if err := checkFlank(flank); err != nil {
		return nil, err
	}
	n := 2*flank + 1
	out := make([]string, 0, (1<<(2*n))/2)
	product(n, func(b []byte) {
		key := string(b)
		if IsCanonical(key) {
			out = append(out, key)
		}
	})
	return out, nil
}
