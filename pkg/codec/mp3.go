package codec

import (
	"context"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
)

// go-mp3 always produces interleaved stereo
const mp3Channels = 2

// MP3Decoder decodes MPEG-1/2 layer III audio in pure Go
type MP3Decoder struct{}

func NewMP3Decoder() *MP3Decoder {
	return &MP3Decoder{}
}

func (d *MP3Decoder) Decode(ctx context.Context, r io.ReadSeeker) (audio.Waveform, error) {
	if err := ctx.Err(); err != nil {
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeCanceled, "mp3 decode canceled", err)
	}

	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeDecode, "failed to create mp3 decoder", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeDecode, "failed to read mp3 samples", err)
	}
	// drop a trailing partial frame
	pcm = pcm[:len(pcm)-len(pcm)%(2*mp3Channels)]

	samples, err := DecodeS16LE(pcm)
	if err != nil {
		return audio.Waveform{}, err
	}

	return audio.Waveform{
		Samples:    samples,
		SampleRate: dec.SampleRate(),
		Channels:   mp3Channels,
	}, nil
}
