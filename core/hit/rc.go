// core/hit/rc.go
package hit

var complement [256]byte

func init() {
	complement['A'], complement['C'], complement['G'], complement['T'] = 'T', 'G', 'C', 'A'
	complement['R'], complement['Y'] = 'Y', 'R'
	complement['S'], complement['W'] = 'S', 'W'
	complement['K'], complement['M'] = 'M', 'K'
	complement['B'], complement['V'] = 'V', 'B'
	complement['D'], complement['H'] = 'H', 'D'
	complement['N'] = 'N'
	for _, b := range []byte("ACGTRYSWKMBVDHN") {
		complement[b+('a'-'A')] = complement[b] + ('a' - 'A')
	}
}

// RevComp returns the reverse complement of seq, keeping case. Unknown bytes
// become 'N'.
func RevComp(seq []byte) []byte {
	n := len(seq)
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		c := complement[seq[n-1-i]]
		if c == 0 {
			c = 'N'
		}
		out[i] = c
	}
	return out
}

// Oriented returns the hit's sequence read in motif orientation: the span as
// is for '+', reverse complemented for '-'.
func Oriented(span []byte, s Strand) []byte {
	if s == Minus {
		return RevComp(span)
	}
	return append([]byte(nil), span...)
}
