// ABOUTME: Engine status codes and errors
// ABOUTME: Opaque numeric statuses tagged with the failing operation
package audio

import (
	"errors"
	"fmt"
)

// Status is an opaque engine status code. The values follow the
// platform audio queue so logs read the same across engines.
type Status int32

const (
	StatusInvalidBuffer      Status = -66687
	StatusBufferEmpty        Status = -66686
	StatusDisposalPending    Status = -66685
	StatusInvalidProperty    Status = -66684
	StatusInvalidParameter   Status = -66682
	StatusCannotStart        Status = -66681
	StatusInvalidRunState    Status = -66678
	StatusEnqueueDuringReset Status = -66632
)

var statusNames = map[Status]string{
	StatusInvalidBuffer:      "invalid buffer",
	StatusBufferEmpty:        "buffer empty",
	StatusDisposalPending:    "disposal pending",
	StatusInvalidProperty:    "invalid property",
	StatusInvalidParameter:   "invalid parameter",
	StatusCannotStart:        "cannot start",
	StatusInvalidRunState:    "invalid run state",
	StatusEnqueueDuringReset: "enqueue during reset",
}

// Error implements error so a bare Status can be used as a sentinel
func (s Status) Error() string {
	if name, ok := statusNames[s]; ok {
		return fmt.Sprintf("%s (%d)", name, int32(s))
	}
	return fmt.Sprintf("status %d", int32(s))
}

// Sentinels for errors.Is
var (
	ErrInvalidBuffer      error = StatusInvalidBuffer
	ErrBufferEmpty        error = StatusBufferEmpty
	ErrDisposed           error = StatusDisposalPending
	ErrInvalidProperty    error = StatusInvalidProperty
	ErrInvalidParameter   error = StatusInvalidParameter
	ErrCannotStart        error = StatusCannotStart
	ErrInvalidRunState    error = StatusInvalidRunState
	ErrEnqueueDuringReset error = StatusEnqueueDuringReset
)

// StatusError carries the name of the failing operation with its status
type StatusError struct {
	Op   string
	Code Status
	Err  error // optional underlying cause
}

// NewStatusError builds a StatusError for op
func NewStatusError(op string, code Status) *StatusError {
	return &StatusError{Op: op, Code: code}
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Code)
}

// Is matches a bare Status sentinel against the error's code
func (e *StatusError) Is(target error) bool {
	var code Status
	if errors.As(target, &code) {
		return code == e.Code
	}
	return false
}

func (e *StatusError) Unwrap() error {
	return e.Err
}
