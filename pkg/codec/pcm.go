package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
)

const pcm16Scale = 32768.0

// DecodeS16LE converts signed 16-bit little-endian PCM to samples in [-1, 1)
func DecodeS16LE(buffer []byte) ([]float64, error) {
	if len(buffer)%2 != 0 {
		return nil, audio.NewAnalysisError(audio.ErrCodeDecode,
			fmt.Sprintf("buffer size %d not aligned for 16-bit samples", len(buffer)), nil)
	}

	samples := make([]float64, len(buffer)/2)
	for i := range samples {
		samples[i] = float64(int16(binary.LittleEndian.Uint16(buffer[i*2:]))) / pcm16Scale
	}
	return samples, nil
}

// quantize16 rounds a sample to the nearest 16-bit value, clipping out of
// range input
func quantize16(sample float64) int {
	if math.IsNaN(sample) {
		return 0
	}
	v := math.Round(sample * 32767)
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return int(v)
}
