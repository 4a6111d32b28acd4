package errors

import (
	"errors"
	"fmt"
)

// ErrQueueClosed is returned for sends requested after the dispatch queue shut down.
var ErrQueueClosed = errors.New("dispatch queue is closed")

// ErrNotFound is returned when a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when a caller fails authentication
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return "unauthorized: " + e.Message
}

// ErrValidation is returned when an event or request is missing required data
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// ErrChannelUnavailable is returned when the messaging channel is not ready to send
type ErrChannelUnavailable struct {
	State string
}

func (e *ErrChannelUnavailable) Error() string {
	return fmt.Sprintf("channel unavailable (state: %s)", e.State)
}

// ErrTransport wraps a failed send attempt
type ErrTransport struct {
	Address string
	Err     error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("send to %s failed: %v", e.Address, e.Err)
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}
