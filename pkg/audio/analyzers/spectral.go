package analyzers

import (
	"context"
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-sonar/algorithms/spectral"
	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
	"github.com/mjibson/go-dsp/fft"
)

// SpectralAnalyzer computes per-frame spectral centroid and zero-crossing rate
type SpectralAnalyzer struct {
	geometry audio.Geometry
	window   []float64
	zcr      *spectral.ZeroCrossingRate
	logger   logging.Logger
}

// SpectralResult holds the frame-aligned spectral features of one waveform
type SpectralResult struct {
	Centroid         audio.TimeSeries[float64] `json:"spectral_centroid"`
	ZeroCrossingRate audio.TimeSeries[float64] `json:"zero_crossing_rate"`
}

// NewSpectralAnalyzer creates a new spectral analyzer
func NewSpectralAnalyzer(sampleRate int) *SpectralAnalyzer {
	g := audio.NewGeometry(sampleRate)
	return &SpectralAnalyzer{
		geometry: g,
		window:   hannWindow(g.WindowLength),
		zcr:      spectral.NewZeroCrossingRateWithParams(sampleRate, g.WindowLength, g.HopLength),
		logger: logging.WithFields(logging.Fields{
			"component":   "spectral_analyzer",
			"sample_rate": sampleRate,
		}),
	}
}

// Analyze computes centroid and ZCR for every frame of w. Empty input
// gives empty series.
func (sa *SpectralAnalyzer) Analyze(ctx context.Context, w audio.Waveform) (*SpectralResult, error) {
	padded := sa.geometry.Pad(w.Samples)
	count := sa.geometry.FrameCount(len(w.Samples))

	centroids := make([]float64, count)
	rates := make([]float64, count)
	freqs := sa.GetFrequencyBins(sa.geometry.WindowLength)
	windowed := make([]float64, sa.geometry.WindowLength)

	for i := range count {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		frame := sa.geometry.Frame(padded, i)
		rates[i] = sa.zcr.Compute(frame)

		for j, s := range frame {
			windowed[j] = s * sa.window[j]
		}
		centroids[i] = sa.calculateSpectralCentroid(sa.magnitudeSpectrum(windowed), freqs)
	}

	times := sa.geometry.FrameTimes(count)
	sa.logger.Debug("Spectral analysis completed", logging.Fields{
		"frames": count,
	})

	return &SpectralResult{
		Centroid:         audio.TimeSeries[float64]{Times: times, Values: centroids},
		ZeroCrossingRate: audio.TimeSeries[float64]{Times: append([]float64(nil), times...), Values: rates},
	}, nil
}

// FFT computes the transform of a real frame using mjibson/go-dsp, which
// handles non power of two sizes
func (sa *SpectralAnalyzer) FFT(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// magnitudeSpectrum keeps the non-negative frequency bins, DC through Nyquist
func (sa *SpectralAnalyzer) magnitudeSpectrum(frame []float64) []float64 {
	spectrum := sa.FFT(frame)
	bins := min(len(spectrum), len(spectrum)/2+1)
	mag := make([]float64, bins)
	for i := range bins {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

// GetFrequencyBins returns the center frequency of each non-negative bin
// for an FFT of size n
func (sa *SpectralAnalyzer) GetFrequencyBins(n int) []float64 {
	freqs := make([]float64, n/2+1)
	for i := range freqs {
		freqs[i] = float64(i) * float64(sa.geometry.SampleRate) / float64(n)
	}
	return freqs
}

// calculateSpectralCentroid computes the magnitude-weighted mean frequency.
// A silent frame has no centroid and reports 0.
func (sa *SpectralAnalyzer) calculateSpectralCentroid(spectrum []float64, freqs []float64) float64 {
	weightedSum := 0.0
	magnitudeSum := 0.0

	for i := 0; i < len(spectrum) && i < len(freqs); i++ {
		weightedSum += freqs[i] * spectrum[i]
		magnitudeSum += spectrum[i]
	}

	if magnitudeSum <= 1e-12 {
		return 0.0
	}
	return weightedSum / magnitudeSum
}

// hannWindow returns a periodic Hann window of length n
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}
