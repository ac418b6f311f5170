package codec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
	"github.com/RyanBlaney/speech-analyzer/pkg/logging"
)

// FFmpegDecoder pipes arbitrary containers through an ffmpeg binary and
// reads back mono s16le at a fixed rate
type FFmpegDecoder struct {
	path       string
	sampleRate int
	logger     logging.Logger
}

func NewFFmpegDecoder(path string, sampleRate int) *FFmpegDecoder {
	return &FFmpegDecoder{
		path:       path,
		sampleRate: sampleRate,
		logger:     logging.WithFields(logging.Fields{"component": "ffmpeg_decoder"}),
	}
}

func (d *FFmpegDecoder) Decode(ctx context.Context, r io.ReadSeeker) (audio.Waveform, error) {
	cmd := exec.CommandContext(ctx, d.path,
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-f", "s16le", // 16-bit signed little-endian
		"-ac", "1",
		"-ar", strconv.Itoa(d.sampleRate),
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = r
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeCanceled, "ffmpeg decode canceled", ctx.Err())
		}
		d.logger.Error(err, "ffmpeg failed", logging.Fields{
			"path":   d.path,
			"stderr": strings.TrimSpace(stderr.String()),
		})
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeDecode,
				"ffmpeg could not decode input: "+strings.TrimSpace(stderr.String()), err)
		}
		return audio.Waveform{}, audio.NewAnalysisError(audio.ErrCodeDecode, "failed to run ffmpeg", err)
	}

	samples, err := DecodeS16LE(stdout.Bytes())
	if err != nil {
		return audio.Waveform{}, err
	}
	return audio.NewMono(samples, d.sampleRate), nil
}
