package codec

import (
	"bytes"
	"context"
	"io"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/speech-analyzer/pkg/audio"
)

func sine(freq float64, sampleRate int, seconds float64) []float64 {
	n := int(float64(sampleRate) * seconds)
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   Format
	}{
		{"riff wave", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), FormatWAV},
		{"riff without wave", []byte("RIFF\x24\x00\x00\x00AVI "), FormatUnknown},
		{"id3 tag", []byte("ID3\x04\x00\x00"), FormatMP3},
		{"frame sync", []byte{0xFF, 0xFB, 0x90, 0x64}, FormatMP3},
		{"ogg", []byte("OggS\x00\x02"), FormatUnknown},
		{"empty", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.header))
		})
	}
}

func TestDecodeS16LE(t *testing.T) {
	samples, err := DecodeS16LE([]byte{0x00, 0x80, 0xFF, 0x7F, 0x00, 0x00})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-1, 32767.0 / 32768.0, 0}, samples, 1e-12)

	_, err = DecodeS16LE([]byte{0x01})
	require.Error(t, err)
	assert.True(t, audio.IsCollaboratorError(err))
}

func TestWAVRoundTrip(t *testing.T) {
	src := audio.NewMono(sine(440, 16000, 0.25), 16000)

	data, err := EncodeWAV(src)
	require.NoError(t, err)
	assert.Equal(t, FormatWAV, DetectFormat(data[:sniffLength]))

	got, err := NewWAVDecoder().Decode(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16000, got.SampleRate)
	assert.Equal(t, 1, got.Channels)
	require.Len(t, got.Samples, len(src.Samples))
	for i := range src.Samples {
		assert.InDelta(t, src.Samples[i], got.Samples[i], 1e-4)
	}
}

func TestFactoryDownmixesStereo(t *testing.T) {
	stereo := audio.Waveform{
		Samples:    []float64{0.5, -0.5, 0.25, 0.25, 0, 1},
		SampleRate: 8000,
		Channels:   2,
	}
	data, err := EncodeWAV(stereo)
	require.NoError(t, err)

	w, err := NewFactory("", 16000).DetectAndDecode(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, w.Channels)
	assert.Equal(t, 8000, w.SampleRate)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5}, w.Samples, 1e-4)
}

func TestFactoryUnsupportedWithoutFFmpeg(t *testing.T) {
	_, err := NewFactory("", 16000).DetectAndDecode(context.Background(), bytes.NewReader([]byte("OggS\x00\x02\x00\x00\x00\x00\x00\x00")))
	require.Error(t, err)
	assert.True(t, audio.IsCollaboratorError(err))
	assert.Contains(t, err.Error(), "unsupported audio format")
}

func TestFactoryRegisterDecoderFactory(t *testing.T) {
	f := NewFactory("", 16000)
	called := false
	f.RegisterDecoderFactory(FormatUnknown, func() Decoder {
		return DecoderFunc(func(ctx context.Context, r io.ReadSeeker) (audio.Waveform, error) {
			called = true
			return audio.NewMono([]float64{0.1}, 16000), nil
		})
	})

	w, err := f.DetectAndDecode(context.Background(), bytes.NewReader([]byte("whatever")))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, []float64{0.1}, w.Samples)

	formats := f.SupportedFormats()
	slices.Sort(formats)
	assert.Equal(t, []Format{FormatMP3, FormatUnknown, FormatWAV}, formats)
}

func TestMP3DecoderRejectsGarbage(t *testing.T) {
	_, err := NewMP3Decoder().Decode(context.Background(), bytes.NewReader([]byte("not an mp3 stream")))
	require.Error(t, err)
	assert.True(t, audio.IsCollaboratorError(err))
}

func TestDecodeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWAVDecoder().Decode(ctx, bytes.NewReader(nil))
	assert.True(t, audio.IsCanceled(err))
}

func TestResample(t *testing.T) {
	t.Run("length follows ratio", func(t *testing.T) {
		src := audio.NewMono(sine(200, 48000, 0.5), 48000)
		got, err := Resample(src, 16000)
		require.NoError(t, err)
		assert.Equal(t, 16000, got.SampleRate)
		assert.Len(t, got.Samples, 8000)
	})

	t.Run("in-band tone survives downsampling", func(t *testing.T) {
		src := audio.NewMono(sine(200, 48000, 0.5), 48000)
		got, err := Resample(src, 16000)
		require.NoError(t, err)

		want := sine(200, 16000, 0.5)
		for i := 100; i < len(want)-100; i++ {
			assert.InDelta(t, want[i], got.Samples[i], 1e-3)
		}
	})

	t.Run("upsampling keeps the tone", func(t *testing.T) {
		src := audio.NewMono(sine(100, 8000, 0.5), 8000)
		got, err := Resample(src, 16000)
		require.NoError(t, err)
		require.Len(t, got.Samples, 8000)

		want := sine(100, 16000, 0.5)
		for i := 100; i < len(want)-100; i++ {
			assert.InDelta(t, want[i], got.Samples[i], 1e-3)
		}
	})

	t.Run("same rate is a no-op", func(t *testing.T) {
		src := audio.NewMono([]float64{0.1, 0.2}, 16000)
		got, err := Resample(src, 16000)
		require.NoError(t, err)
		assert.Equal(t, src, got)
	})

	t.Run("invalid target", func(t *testing.T) {
		_, err := Resample(audio.NewMono([]float64{0.1}, 16000), 0)
		assert.True(t, audio.IsInputError(err))
	})
}
