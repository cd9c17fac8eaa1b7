package calibrator

// pav runs the pool-adjacent-violators algorithm: given values y already
// sorted by the independent variable and per-point weights w, it returns
// the nondecreasing fitted sequence minimizing weighted squared error.
//
// Scan left to right; whenever solution[i] > solution[i+1], merge the two
// adjacent blocks into the weighted average of all their points, then
// resume the scan one position left of the merged block, so a left
// neighbor that now violates monotonicity is pooled next.
func pav(y, w []float64) []float64 {
	n := len(y)
	solution := append([]float64(nil), y...)
	weight := append([]float64(nil), w...)

	i := 0
	for i < n-1 {
		if solution[i] > solution[i+1] {
			// Runs of equal values are unions of whole blocks: pool the run
			// ending at i with the run starting at i+1.
			j, hi := i, i+1
			for j > 0 && solution[j-1] == solution[j] {
				j--
			}
			for hi < n-1 && solution[hi+1] == solution[hi] {
				hi++
			}
			sum, totalWeight := 0.0, 0.0
			for k := j; k <= hi; k++ {
				sum += y[k] * weight[k]
				totalWeight += weight[k]
			}
			for k := j; k <= hi; k++ {
				solution[k] = sum / totalWeight
			}
			i = j - 1
			if i < 0 {
				i = 0
			}
		} else {
			i++
		}
	}
	return solution
}
