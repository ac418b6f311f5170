package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
)

// WhisperServer posts recordings to a whisper.cpp server's /inference
// endpoint
type WhisperServer struct {
	serverURL  string
	opts       options
	httpClient *http.Client
	logger     logging.Logger
}

func NewWhisperServer(serverURL string, opts ...Option) (*WhisperServer, error) {
	if serverURL == "" {
		return nil, audio.NewAnalysisError(audio.ErrCodeConfig, "whisper server url must not be empty", nil)
	}
	o := applyOptions(opts)
	return &WhisperServer{
		serverURL:  strings.TrimRight(serverURL, "/"),
		opts:       o,
		httpClient: &http.Client{Timeout: o.timeout},
		logger: logging.WithFields(logging.Fields{
			"component": "whisper_transcriber",
			"url":       serverURL,
		}),
	}, nil
}

func (s *WhisperServer) Transcribe(ctx context.Context, w audio.Waveform) (string, error) {
	wav, err := encodeForUpload(w)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", failed("whisper: create form file", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return "", failed("whisper: write wav data", err)
	}
	if s.opts.language != "" {
		if err := mw.WriteField("language", s.opts.language); err != nil {
			return "", failed("whisper: write language field", err)
		}
	}
	if s.opts.model != "" {
		if err := mw.WriteField("model", s.opts.model); err != nil {
			return "", failed("whisper: write model field", err)
		}
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return "", failed("whisper: write response format field", err)
	}
	if err := mw.Close(); err != nil {
		return "", failed("whisper: close multipart writer", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+"/inference", &body)
	if err != nil {
		return "", failed("whisper: create request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	s.logger.Debug("Submitting transcription", logging.Fields{
		"duration_s": w.Duration(),
		"bytes":      len(wav),
	})

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", audio.NewAnalysisError(audio.ErrCodeCanceled, "whisper: request canceled", ctx.Err())
		}
		return "", failed("whisper: http request", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", failed("whisper: read response body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", failed(fmt.Sprintf("whisper: server returned HTTP %d: %s",
			resp.StatusCode, strings.TrimSpace(string(data))), nil)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", failed("whisper: parse JSON response", err)
	}

	return strings.TrimSpace(result.Text), nil
}
