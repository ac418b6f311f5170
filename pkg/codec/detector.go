package codec

import "bytes"

// Format names an audio container
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatUnknown Format = "unknown"
)

const sniffLength = 12

// DetectFormat identifies a container from its leading bytes
func DetectFormat(header []byte) Format {
	if isWAV(header) {
		return FormatWAV
	}
	if isMP3(header) {
		return FormatMP3
	}
	return FormatUnknown
}

func isWAV(header []byte) bool {
	return len(header) >= 12 &&
		bytes.Equal(header[0:4], []byte("RIFF")) &&
		bytes.Equal(header[8:12], []byte("WAVE"))
}

// isMP3 accepts an ID3v2 tag or a bare MPEG audio frame sync
func isMP3(header []byte) bool {
	if len(header) >= 3 && bytes.Equal(header[0:3], []byte("ID3")) {
		return true
	}
	return len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0
}
