// Package stats implements incremental maintenance of running means and
// extrema under add, replace, and remove of individual samples. All
// functions are pure: they depend only on the current (mean, count) pair
// and the sample values involved, never on stored raw samples.
//
// The quantity carried through every operation is the exact sum
// mean*count, recovered and redivided on each mutation so rounding error
// does not compound across repeated incremental updates.
package stats

// Add folds a new sample into a running mean.
func Add(mean float64, count int, v float64) (float64, int) {
	sum := mean*float64(count) + v
	count++
	return sum / float64(count), count
}

// Replace swaps one sample for another at a fixed count. The count must be
// positive; with no samples there is nothing to replace.
func Replace(mean float64, count int, oldV, newV float64) float64 {
	if count <= 0 {
		return mean
	}
	sum := mean*float64(count) - oldV + newV
	return sum / float64(count)
}

// Remove subtracts a sample from a running mean. Removing the last sample
// resets the mean to the empty state.
func Remove(mean float64, count int, v float64) (float64, int) {
	if count <= 0 {
		return mean, count
	}
	if count == 1 {
		return 0, 0
	}
	sum := mean*float64(count) - v
	count--
	return sum / float64(count), count
}

// WidenMin returns the smaller of the current minimum and a new sample.
// A nil minimum means no samples have been seen yet.
func WidenMin(curMin *int, v int) *int {
	if curMin == nil || v < *curMin {
		return &v
	}
	return curMin
}

// WidenMax returns the larger of the current maximum and a new sample.
func WidenMax(curMax *int, v int) *int {
	if curMax == nil || v > *curMax {
		return &v
	}
	return curMax
}
