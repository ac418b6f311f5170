package vad

import (
	"encoding/binary"
	"fmt"
	"math"

	webrtcvad "github.com/godeps/webrtcvad-go"
)

// Classifier labels one frame of 16-bit PCM as speech or non-speech
type Classifier interface {
	IsSpeech(frame []int16, sampleRate int) (bool, error)
}

// ClassifierFactory builds a classifier for one segmentation run. It
// returns an error when the sample rate or frame length is unsupported.
type ClassifierFactory func(sampleRate, frameLength int) (Classifier, error)

// DefaultMode is the moderate WebRTC aggressiveness setting
const DefaultMode = 2

// WebRTCClassifier adapts the WebRTC voice activity detector
type WebRTCClassifier struct {
	vad *webrtcvad.VAD
	buf []byte
}

// NewWebRTCFactory returns a factory producing WebRTC classifiers at mode
func NewWebRTCFactory(mode int) ClassifierFactory {
	return func(sampleRate, frameLength int) (Classifier, error) {
		if !webrtcvad.ValidRateAndFrameLength(sampleRate, frameLength) {
			return nil, fmt.Errorf("webrtc vad does not support %d samples at %d Hz", frameLength, sampleRate)
		}
		v, err := webrtcvad.New(mode)
		if err != nil {
			return nil, fmt.Errorf("failed to create webrtc vad: %w", err)
		}
		return &WebRTCClassifier{vad: v, buf: make([]byte, frameLength*2)}, nil
	}
}

// IsSpeech implements Classifier
func (c *WebRTCClassifier) IsSpeech(frame []int16, sampleRate int) (bool, error) {
	if cap(c.buf) < len(frame)*2 {
		c.buf = make([]byte, len(frame)*2)
	}
	buf := c.buf[:len(frame)*2]
	for i, s := range frame {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return c.vad.IsSpeech(buf, sampleRate)
}

// RMSClassifier is an energy threshold detector usable at any sample rate
type RMSClassifier struct {
	threshold float64
}

// DefaultEnergyThreshold is the normalized RMS level treated as speech
const DefaultEnergyThreshold = 0.015

// NewRMSFactory returns a factory producing energy classifiers
func NewRMSFactory(threshold float64) ClassifierFactory {
	if threshold <= 0 {
		threshold = DefaultEnergyThreshold
	}
	return func(int, int) (Classifier, error) {
		return &RMSClassifier{threshold: threshold}, nil
	}
}

// IsSpeech implements Classifier
func (c *RMSClassifier) IsSpeech(frame []int16, _ int) (bool, error) {
	return rms(frame) >= c.threshold, nil
}

func rms(pcm []int16) float64 {
	if len(pcm) == 0 {
		return 0
	}
	var sum float64
	for _, s := range pcm {
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(pcm)))
}
