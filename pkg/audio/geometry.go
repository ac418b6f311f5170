package audio

import "math"

// Frame sizing shared by every frame-based analyzer
const (
	WindowDuration = 0.030
	HopDuration    = 0.010
)

// Geometry holds window and hop sizes in samples for one sample rate
type Geometry struct {
	SampleRate   int
	WindowLength int
	HopLength    int
}

// NewGeometry derives the 30 ms window and 10 ms hop for sampleRate
func NewGeometry(sampleRate int) Geometry {
	return Geometry{
		SampleRate:   sampleRate,
		WindowLength: max(1, int(math.Round(WindowDuration*float64(sampleRate)))),
		HopLength:    max(1, int(math.Round(HopDuration*float64(sampleRate)))),
	}
}

// HopSeconds returns the hop in seconds
func (g Geometry) HopSeconds() float64 {
	return float64(g.HopLength) / float64(g.SampleRate)
}

// FrameCount returns how many frames cover n samples. Signals shorter
// than one window still produce a single zero-padded frame.
func (g Geometry) FrameCount(n int) int {
	if n <= 0 {
		return 0
	}
	padded := max(n, g.WindowLength)
	return (padded-g.WindowLength)/g.HopLength + 1
}

// FrameTime returns the time stamp of frame i
func (g Geometry) FrameTime(i int) float64 {
	return float64(i*g.HopLength) / float64(g.SampleRate)
}

// FrameTimes returns time stamps for count frames
func (g Geometry) FrameTimes(count int) []float64 {
	times := make([]float64, count)
	for i := range times {
		times[i] = g.FrameTime(i)
	}
	return times
}

// Pad returns signal extended with zeros to at least one window
func (g Geometry) Pad(signal []float64) []float64 {
	if len(signal) >= g.WindowLength || len(signal) == 0 {
		return signal
	}
	padded := make([]float64, g.WindowLength)
	copy(padded, signal)
	return padded
}

// Frame returns a view of frame i of a padded signal
func (g Geometry) Frame(padded []float64, i int) []float64 {
	start := i * g.HopLength
	return padded[start : start+g.WindowLength]
}
