package codec

import (
	"context"
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
)

// WAVDecoder decodes RIFF/WAVE integer PCM
type WAVDecoder struct{}

func NewWAVDecoder() *WAVDecoder {
	return &WAVDecoder{}
}

func (d *WAVDecoder) Decode(ctx context.Context, r io.ReadSeeker) (audio.Waveform, error) {
	if err := ctx.Err(); err != nil {
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeCanceled, "wav decode canceled", err)
	}

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeDecode, "not a valid wav file", nil)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeDecode, "failed to read wav samples", err)
	}
	if buf == nil || buf.Format == nil {
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeDecode, "wav file has no format chunk", nil)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeDecode,
			fmt.Sprintf("unsupported wav bit depth %d", bitDepth), nil)
	}

	samples := make([]float64, len(buf.Data))
	if bitDepth == 8 {
		// 8-bit wav is unsigned
		for i, v := range buf.Data {
			samples[i] = float64(v-128) / 128
		}
	} else {
		scale := float64(int64(1) << (bitDepth - 1))
		for i, v := range buf.Data {
			samples[i] = float64(v) / scale
		}
	}

	return audio.Waveform{
		Samples:    samples,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}, nil
}
