package codec

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
)

// Decoder turns an encoded recording into PCM
type Decoder interface {
	Decode(ctx context.Context, r io.ReadSeeker) (audio.Waveform, error)
}

// DecoderFunc adapts a function to the Decoder interface
type DecoderFunc func(ctx context.Context, r io.ReadSeeker) (audio.Waveform, error)

func (f DecoderFunc) Decode(ctx context.Context, r io.ReadSeeker) (audio.Waveform, error) {
	return f(ctx, r)
}

// Factory selects a decoder by sniffing the container format
type Factory struct {
	decoders map[Format]func() Decoder
	fallback func() Decoder
	mu       sync.RWMutex
	logger   logging.Logger
}

// NewFactory creates a factory with the WAV and MP3 decoders registered.
// Unknown containers go through ffmpeg at ffmpegPath when it is not empty.
func NewFactory(ffmpegPath string, targetRate int) *Factory {
	f := &Factory{
		decoders: make(map[Format]func() Decoder),
		logger:   logging.WithFields(logging.Fields{"component": "codec_factory"}),
	}

	f.RegisterDecoderFactory(FormatWAV, func() Decoder {
		return NewWAVDecoder()
	})
	f.RegisterDecoderFactory(FormatMP3, func() Decoder {
		return NewMP3Decoder()
	})
	if ffmpegPath != "" {
		f.fallback = func() Decoder {
			return NewFFmpegDecoder(ffmpegPath, targetRate)
		}
	}

	return f
}

// CreateDecoder returns a decoder for the given format
func (f *Factory) CreateDecoder(format Format) (Decoder, error) {
	f.mu.RLock()
	decoderFactory, exists := f.decoders[format]
	fallback := f.fallback
	f.mu.RUnlock()

	if exists {
		return decoderFactory(), nil
	}
	if fallback != nil {
		return fallback(), nil
	}
	return nil, audio.NewAnalysisError(audio.ErrCodeDecode,
		fmt.Sprintf("unsupported audio format: %s", format), nil)
}

// DetectAndDecode sniffs the header of r and decodes it with the matching
// decoder. The result is downmixed to mono.
func (f *Factory) DetectAndDecode(ctx context.Context, r io.ReadSeeker) (audio.Waveform, error) {
	header := make([]byte, sniffLength)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeDecode, "failed to read audio header", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeDecode, "failed to rewind audio input", err)
	}

	format := DetectFormat(header[:n])
	f.logger.Debug("Detected audio format", logging.Fields{
		"format":       format,
		"header_bytes": n,
	})

	decoder, err := f.CreateDecoder(format)
	if err != nil {
		return audio.Waveform{}, err
	}

	w, err := decoder.Decode(ctx, r)
	if err != nil {
		return audio.Waveform{}, err
	}
	return w.Mono(), nil
}

// RegisterDecoderFactory registers a decoder constructor for a format
func (f *Factory) RegisterDecoderFactory(format Format, factory func() Decoder) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.decoders[format] = factory
}

// SupportedFormats returns the formats with a registered decoder
func (f *Factory) SupportedFormats() []Format {
	f.mu.RLock()
	defer f.mu.RUnlock()

	formats := make([]Format, 0, len(f.decoders))
	for format := range f.decoders {
		formats = append(formats, format)
	}
	return formats
}
