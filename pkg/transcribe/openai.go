package transcribe

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
)

// OpenAITranscriber uses the hosted audio transcription API
type OpenAITranscriber struct {
	client oai.Client
	opts   options
	logger logging.Logger
}

func NewOpenAITranscriber(apiKey string, opts ...Option) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, audio.NewAnalysisError(audio.ErrCodeConfig, "openai api key must not be empty", nil)
	}
	o := applyOptions(opts)
	if o.model == "" {
		o.model = oai.AudioModelWhisper1
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: o.timeout}),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}

	return &OpenAITranscriber{
		client: oai.NewClient(reqOpts...),
		opts:   o,
		logger: logging.WithFields(logging.Fields{
			"component": "openai_transcriber",
			"model":     o.model,
		}),
	}, nil
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, w audio.Waveform) (string, error) {
	wav, err := encodeForUpload(w)
	if err != nil {
		return "", err
	}

	params := oai.AudioTranscriptionNewParams{
		File:  oai.File(bytes.NewReader(wav), "audio.wav", "audio/wav"),
		Model: t.opts.model,
	}
	if t.opts.language != "" {
		params.Language = oai.String(t.opts.language)
	}

	t.logger.Debug("Submitting transcription", logging.Fields{
		"duration_s": w.Duration(),
		"language":   t.opts.language,
	})

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return "", audio.NewAnalysisError(audio.ErrCodeCanceled, "openai: request canceled", ctx.Err())
		}
		return "", failed("openai: transcription request", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
