package codec

import (
	"errors"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
)

// EncodeWAV renders a waveform as a 16-bit PCM wav file
func EncodeWAV(w audio.Waveform) ([]byte, error) {
	if w.SampleRate <= 0 || w.Channels <= 0 {
		return nil, audio.NewAnalysisError(audio.ErrCodeInvalidInput, "cannot encode waveform without a format", nil)
	}

	data := make([]int, len(w.Samples))
	for i, s := range w.Samples {
		data[i] = quantize16(s)
	}

	out := &memFile{}
	enc := wav.NewEncoder(out, w.SampleRate, 16, w.Channels, 1)
	err := enc.Write(&goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: w.Channels,
			SampleRate:  w.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	})
	if err != nil {
		return nil, audio.NewAnalysisError(audio.ErrCodeDecode, "failed to write wav samples", err)
	}
	if err := enc.Close(); err != nil {
		return nil, audio.NewAnalysisError(audio.ErrCodeDecode, "failed to finalize wav header", err)
	}
	return out.buf, nil
}

// memFile is an in-memory io.WriteSeeker; the wav encoder seeks back to
// patch chunk sizes
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var base int
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = m.pos
	case io.SeekEnd:
		base = len(m.buf)
	default:
		return 0, errors.New("invalid whence")
	}
	next := base + int(offset)
	if next < 0 {
		return 0, errors.New("negative position")
	}
	m.pos = next
	return int64(next), nil
}
