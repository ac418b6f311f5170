package analyzers

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
	"gonum.org/v1/gonum/stat"
)

// Speech rate defaults
const (
	DefaultThresholdPercentile = 100.0
	DefaultMinPeakDistance     = 80 * time.Millisecond
)

// SpeechRateEstimator approximates syllabic rate by counting envelope peaks.
//
// With the default 100th percentile threshold only peaks reaching the
// global maximum count, so multi-syllable utterances are undercounted.
type SpeechRateEstimator struct {
	thresholdPercentile float64
	minPeakDistance     time.Duration
	logger              logging.Logger
}

// NewSpeechRateEstimator creates an estimator. percentile is in [0, 100].
func NewSpeechRateEstimator(percentile float64, minPeakDistance time.Duration) (*SpeechRateEstimator, error) {
	if percentile < 0 || percentile > 100 || math.IsNaN(percentile) {
		return nil, fmt.Errorf("threshold percentile must be between 0 and 100, got %v", percentile)
	}
	if minPeakDistance <= 0 {
		return nil, fmt.Errorf("minimum peak distance must be positive, got %s", minPeakDistance)
	}
	return &SpeechRateEstimator{
		thresholdPercentile: percentile,
		minPeakDistance:     minPeakDistance,
		logger: logging.WithFields(logging.Fields{
			"component": "speech_rate_estimator",
		}),
	}, nil
}

// Estimate returns peaks per second of duration along with the frame
// indices of the detected peaks
func (sr *SpeechRateEstimator) Estimate(rms audio.TimeSeries[float64], hopSeconds, duration float64) (float64, []int) {
	if rms.IsEmpty() || duration <= 0 || hopSeconds <= 0 {
		return 0, []int{}
	}

	sorted := append([]float64(nil), rms.Values...)
	sort.Float64s(sorted)
	threshold := stat.Quantile(sr.thresholdPercentile/100, stat.LinInterp, sorted, nil)

	distance := sr.distanceFrames(hopSeconds)
	peaks := FindPeaks(rms.Values, threshold, distance)

	sr.logger.Debug("Speech rate estimated", logging.Fields{
		"threshold":       threshold,
		"distance_frames": distance,
		"peaks":           len(peaks),
	})

	return float64(len(peaks)) / duration, peaks
}

func (sr *SpeechRateEstimator) distanceFrames(hopSeconds float64) int {
	// the small bias keeps 0.08/0.01 from truncating to 7
	frames := int(math.Floor(sr.minPeakDistance.Seconds()/hopSeconds + 1e-9))
	return max(1, frames)
}

// FindPeaks returns indices of local maxima in x that are at least height
// and at least distance samples apart. Flat peaks report their middle
// sample, edge samples are never peaks, and when two peaks are too close
// the higher one is kept.
func FindPeaks(x []float64, height float64, distance int) []int {
	candidates := localMaxima(x)

	peaks := candidates[:0]
	for _, p := range candidates {
		if x[p] >= height {
			peaks = append(peaks, p)
		}
	}

	if distance <= 1 || len(peaks) < 2 {
		return peaks
	}
	return selectByDistance(x, peaks, distance)
}

func localMaxima(x []float64) []int {
	peaks := []int{}
	i := 1
	last := len(x) - 1
	for i < last {
		if x[i-1] < x[i] {
			ahead := i + 1
			for ahead < last && x[ahead] == x[i] {
				ahead++
			}
			if x[ahead] < x[i] {
				left := i
				right := ahead - 1
				peaks = append(peaks, (left+right)/2)
				i = ahead
			}
		}
		i++
	}
	return peaks
}

func selectByDistance(x []float64, peaks []int, distance int) []int {
	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}

	// visit peaks from highest to lowest; ties resolve to the later index
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x[peaks[order[a]]] < x[peaks[order[b]]]
	})

	for k := len(order) - 1; k >= 0; k-- {
		j := order[k]
		if !keep[j] {
			continue
		}
		for l := j - 1; l >= 0 && peaks[j]-peaks[l] < distance; l-- {
			keep[l] = false
		}
		for l := j + 1; l < len(peaks) && peaks[l]-peaks[j] < distance; l++ {
			keep[l] = false
		}
	}

	out := []int{}
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}
