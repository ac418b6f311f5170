package codec

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
)

// Resample converts a mono waveform to targetRate with the Fourier method:
// the spectrum is truncated or zero-padded to the new length and
// transformed back. The output has round(n*target/source) samples.
func Resample(w audio.Waveform, targetRate int) (audio.Waveform, error) {
	if err := w.Validate(); err != nil {
		return audio.Waveform{}, err
	}
	if targetRate <= 0 {
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeInvalidInput,
			fmt.Sprintf("target sample rate must be positive, got %d", targetRate), nil)
	}
	if targetRate == w.SampleRate {
		return w, nil
	}

	n := len(w.Samples)
	m := int(math.Round(float64(n) * float64(targetRate) / float64(w.SampleRate)))
	if m < 1 {
		m = 1
	}

	return audio.NewMono(resampleFourier(w.Samples, m), targetRate), nil
}

func resampleFourier(x []float64, m int) []float64 {
	n := len(x)
	spectrum := fft.FFTReal(x)
	out := make([]complex128, m)

	k := min(n, m)
	nyq := k/2 + 1
	copy(out[:nyq], spectrum[:nyq])
	if k > 2 {
		tail := k - nyq
		copy(out[m-tail:], spectrum[n-tail:])
	}

	// An even-length band has a shared Nyquist bin that must be split or
	// folded so the result stays real
	if k%2 == 0 {
		switch {
		case m < n:
			out[m-k/2] += spectrum[n-k/2]
		case n < m:
			out[k/2] *= 0.5
			out[m-k/2] = out[k/2]
		}
	}

	y := fft.IFFT(out)
	scale := float64(m) / float64(n)
	result := make([]float64, m)
	for i, v := range y {
		result[i] = real(v) * scale
	}
	return result
}
