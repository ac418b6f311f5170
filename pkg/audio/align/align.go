// Package align places an ordered label sequence onto voiced intervals.
package align

import (
	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
)

// Strategy names the placement rule used for an alignment
type Strategy string

const (
	// StrategySegments uses interval midpoints
	StrategySegments Strategy = "segments"
	// StrategyUniform spreads labels evenly over the recording
	StrategyUniform Strategy = "uniform"
)

// Uniform grid margin in seconds
const EdgeMargin = 0.1

// Alignment is the result of placing labels in time
type Alignment struct {
	Labels   []audio.TimedLabel `json:"labels"`
	Strategy Strategy           `json:"strategy"`
}

// Aligner maps N labels onto M voiced intervals. When there are at least
// as many intervals as labels the first N midpoints are used in order;
// otherwise the intervals are ignored and labels are spread over
// [0.1, duration-0.1]. No acoustic matching is done.
type Aligner struct {
	logger logging.Logger
}

// NewAligner creates an aligner
func NewAligner() *Aligner {
	return &Aligner{
		logger: logging.WithFields(logging.Fields{
			"component": "aligner",
		}),
	}
}

// Align places labels in time
func (a *Aligner) Align(labels []string, intervals []audio.VoicedInterval, duration float64) Alignment {
	n := len(labels)
	if n == 0 {
		return Alignment{Labels: []audio.TimedLabel{}, Strategy: StrategySegments}
	}

	out := make([]audio.TimedLabel, n)
	if len(intervals) >= n {
		for i, label := range labels {
			out[i] = audio.TimedLabel{Label: label, Time: intervals[i].Midpoint()}
		}
		return Alignment{Labels: out, Strategy: StrategySegments}
	}

	a.logger.Debug("Fewer voiced intervals than labels, using uniform grid", logging.Fields{
		"labels":    n,
		"intervals": len(intervals),
		"duration":  duration,
	})

	for i, t := range UniformGrid(n, duration) {
		out[i] = audio.TimedLabel{Label: labels[i], Time: t}
	}
	return Alignment{Labels: out, Strategy: StrategyUniform}
}

// UniformGrid returns n evenly spaced points over [0.1, duration-0.1].
// A single point sits at 0.1, and recordings shorter than 0.2 s collapse
// the grid onto 0.1 instead of running backwards.
func UniformGrid(n int, duration float64) []float64 {
	if n <= 0 {
		return []float64{}
	}
	lo := EdgeMargin
	if n == 1 {
		return []float64{lo}
	}
	hi := max(lo, duration-EdgeMargin)

	grid := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range grid {
		grid[i] = lo + float64(i)*step
	}
	grid[n-1] = hi
	return grid
}
