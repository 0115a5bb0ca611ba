package scheduler

import "math"

// Slice spreads total units over n destinations as evenly as possible.
// Destination i gets round((i+1)*total/n) - round(i*total/n); the last one
// takes whatever is left so the parts always sum to total.
func Slice(n, total int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	prev := 0
	for i := 0; i < n; i++ {
		cur := total
		if i < n-1 {
			cur = int(math.Round(float64((i+1)*total) / float64(n)))
		}
		out[i] = cur - prev
		prev = cur
	}
	return out
}

// split divides spots between the morning and afternoon pools in the ratio
// am:pm, rounding the morning share up.
func split(spots int, am, pm float64) (int, int) {
	if am == 0 {
		return 0, spots
	}
	if pm == 0 {
		return spots, 0
	}
	nAM := int(math.Ceil(float64(spots) * am / (am + pm)))
	return nAM, spots - nAM
}
