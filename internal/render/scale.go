package render

import "math"

// linear maps [d0,d1] onto [r0,r1]. A degenerate domain maps to the middle
// of the range.
type linear struct {
	d0, d1, r0, r1 float64
}

func (s linear) at(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

func bounds(vs []float64) (lo, hi float64) {
	if len(vs) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// pad widens [lo,hi] a little so points do not sit on the frame.
func pad(lo, hi float64) (float64, float64) {
	if lo == hi {
		return lo - 1, hi + 1
	}
	d := (hi - lo) * 0.05
	return lo - d, hi + d
}
