// Package transcribe turns a recording into text through a speech
// recognition backend.
package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/codec"
)

// Transcriber recognizes the speech in a waveform
type Transcriber interface {
	Transcribe(ctx context.Context, w audio.Waveform) (string, error)
}

// Provider names a transcription backend
type Provider string

const (
	ProviderWhisper Provider = "whisper"
	ProviderOpenAI  Provider = "openai"
	ProviderNone    Provider = "none"
)

// DefaultTimeout bounds a single transcription request
const DefaultTimeout = 60 * time.Second

// Config selects and configures a backend
type Config struct {
	Provider Provider
	URL      string
	Model    string
	Language string
	APIKey   string
	Timeout  time.Duration
}

// New builds the transcriber named by cfg.Provider. ProviderNone yields a
// nil Transcriber and no error.
func New(cfg Config) (Transcriber, error) {
	switch cfg.Provider {
	case ProviderWhisper:
		ws, err := NewWhisperServer(cfg.URL,
			WithLanguage(cfg.Language),
			WithModel(cfg.Model),
			WithTimeout(cfg.Timeout))
		if err != nil {
			return nil, err
		}
		return ws, nil
	case ProviderOpenAI:
		ot, err := NewOpenAITranscriber(cfg.APIKey,
			WithLanguage(cfg.Language),
			WithModel(cfg.Model),
			WithTimeout(cfg.Timeout),
			WithBaseURL(cfg.URL))
		if err != nil {
			return nil, err
		}
		return ot, nil
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, audio.NewAnalysisError(audio.ErrCodeConfig,
			fmt.Sprintf("unknown transcription provider %q", cfg.Provider), nil)
	}
}

type options struct {
	language string
	model    string
	baseURL  string
	timeout  time.Duration
}

// Option configures a transcriber
type Option func(*options)

// WithLanguage sets the ISO-639-1 language hint
func WithLanguage(lang string) Option {
	return func(o *options) { o.language = lang }
}

// WithModel overrides the backend model name
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithTimeout bounds each request. Zero keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithBaseURL points the client at a compatible API endpoint
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

func applyOptions(opts []Option) options {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// encodeForUpload prepares the wav payload sent to every backend
func encodeForUpload(w audio.Waveform) ([]byte, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	data, err := codec.EncodeWAV(w)
	if err != nil {
		return nil, audio.NewAnalysisError(audio.ErrCodeTranscription, "failed to encode audio for upload", err)
	}
	return data, nil
}

func failed(msg string, err error) error {
	return audio.NewAnalysisError(audio.ErrCodeTranscription, msg, err)
}
