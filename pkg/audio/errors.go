package audio

import (
	"context"
	"errors"
)

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// AnalysisError represents an error that escapes the feature pipeline or
// one of its collaborators
type AnalysisError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeDecode        = "DECODE_FAILED"
	ErrCodeTranscription = "TRANSCRIPTION_FAILED"
	ErrCodeRender        = "RENDER_FAILED"
	ErrCodeConfig        = "CONFIG_INVALID"
	ErrCodeCanceled      = "CANCELED"
)

// NewAnalysisError creates a new analysis error
func NewAnalysisError(code, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsInputError reports whether err is an input contract violation
func IsInputError(err error) bool {
	return hasCode(err, ErrCodeInvalidInput)
}

// IsCollaboratorError reports whether err came from a decoder, transcriber,
// renderer or the configuration feeding them
func IsCollaboratorError(err error) bool {
	return hasCode(err, ErrCodeDecode, ErrCodeTranscription, ErrCodeRender, ErrCodeConfig)
}

// IsCanceled reports whether the analysis was abandoned by its caller
func IsCanceled(err error) bool {
	if hasCode(err, ErrCodeCanceled) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func hasCode(err error, codes ...string) bool {
	var ae *AnalysisError
	if !errors.As(err, &ae) {
		return false
	}
	for _, c := range codes {
		if ae.Code == c {
			return true
		}
	}
	return false
}
