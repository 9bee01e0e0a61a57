// Package crossing detects speed thresholds crossed from below between two samples.
//
// A crossing is a move from strictly below a threshold to at-or-above it.
// Reaching a threshold exactly counts; sitting on it across samples does not
// count again, and neither does falling back below it.
package crossing

import "github.com/rotblauer/catspeak/types/fix"

// Crossed returns, in input order, every threshold t with prev < t <= cur.
// Each threshold is checked on its own, so a single large jump reports
// all of the thresholds it passed. It is pure; it has no state of its own.
func Crossed(prev, cur fix.Kmh, thresholds []int) []int {
	var crossed []int
	for _, t := range thresholds {
		if int(prev) < t && t <= int(cur) {
			crossed = append(crossed, t)
		}
	}
	return crossed
}
