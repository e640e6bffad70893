package core

import "errors"

type ErrorCode string

const (
	ErrorInvalid    ErrorCode = "invalid"
	ErrorNotFound   ErrorCode = "not_found"
	ErrorConflict   ErrorCode = "conflict"
	ErrorBadGateway ErrorCode = "bad_gateway"
)

// PipelineError carries a stable code alongside the message so callers can
// map failures to the right surface (HTTP status, CLI exit, Slack reply).
type PipelineError struct {
	Code    ErrorCode
	Message string
}

func (e *PipelineError) Error() string { return e.Message }

func NewInvalidError(msg string) error  { return &PipelineError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &PipelineError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error { return &PipelineError{Code: ErrorConflict, Message: msg} }

func NewBadGatewayError(msg string) error {
	return &PipelineError{Code: ErrorBadGateway, Message: msg}
}

func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
