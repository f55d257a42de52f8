package domain

import "iter"

// Direction selects which side of a threshold counts as a hazard day.
type Direction int

const (
	// Above matches values strictly greater than the threshold.
	Above Direction = iota
	// Below matches values strictly less than the threshold.
	Below
)

func (d Direction) String() string {
	if d == Below {
		return "below"
	}
	return "above"
}

func (d Direction) crosses(v, threshold float64) bool {
	if d == Below {
		return v < threshold
	}
	return v > threshold
}

// Run is a maximal stretch of consecutive values that crossed a threshold.
type Run struct {
	Start  int
	Values []float64
}

// Len is the number of values in the run.
func (r Run) Len() int { return len(r.Values) }

// End is the index of the last value in the run.
func (r Run) End() int { return r.Start + len(r.Values) - 1 }

// Runs yields each run of values crossing threshold in dir that is at least
// minLen long, in index order. A run is only yielded once a value that does
// not cross the threshold closes it, so a run reaching the end of values is
// never yielded. Run values share the backing array of values.
func Runs(values []float64, threshold float64, dir Direction, minLen int) iter.Seq[Run] {
	return func(yield func(Run) bool) {
		start := -1
		for i, v := range values {
			if dir.crosses(v, threshold) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start < 0 {
				continue
			}
			run := Run{Start: start, Values: values[start:i:i]}
			start = -1
			if run.Len() >= minLen && !yield(run) {
				return
			}
		}
	}
}
