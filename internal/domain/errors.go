package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuth            = errors.New("missing or invalid credential")
	ErrInvalidInput    = errors.New("invalid input")
	ErrRemote          = errors.New("remote generation failed")
	ErrTimeout         = errors.New("timed out waiting for media")
	ErrIO              = errors.New("local persistence failed")
	ErrNothingToDelete = errors.New("nothing to delete")
	ErrNoOutput        = errors.New("no output saved yet")

	ErrEmptyPrompt         = fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	ErrUnknownModel        = fmt.Errorf("%w: unknown model", ErrInvalidInput)
	ErrSourceImageRequired = fmt.Errorf("%w: source image is required", ErrInvalidInput)
	ErrRateLimited         = fmt.Errorf("%w: rate limited", ErrRemote)
)

// UnexpectedOutputError reports a remote result whose shape is neither a URL
// nor inline bytes. Raw carries the decoded value for diagnostics.
type UnexpectedOutputError struct {
	Raw any
}

func (e *UnexpectedOutputError) Error() string {
	return fmt.Sprintf("unexpected output format: %v", e.Raw)
}

// Error kinds exposed to callers of the service.
const (
	KindAuth             = "auth"
	KindInvalidInput     = "invalid_input"
	KindRemote           = "remote"
	KindTimeout          = "timeout"
	KindUnexpectedOutput = "unexpected_output"
	KindIO               = "io"
	KindNothingToDelete  = "nothing_to_delete"
	KindNotFound         = "not_found"
	KindInternal         = "internal"
)

// Kind classifies err into one of the Kind* codes.
func Kind(err error) string {
	var unexpected *UnexpectedOutputError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.As(err, &unexpected):
		return KindUnexpectedOutput
	case errors.Is(err, ErrRemote):
		return KindRemote
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrNothingToDelete):
		return KindNothingToDelete
	case errors.Is(err, ErrNoOutput):
		return KindNotFound
	default:
		return KindInternal
	}
}
