// internal/errors/send_error.go
package appErrors

import (
	"errors"
	"fmt"
)

// SendErrorKind classifies a failed delivery attempt. The dispatcher's
// finalization policy keys off this: auth and provider failures are
// terminal, transport failures are retried by reverting to pending.
type SendErrorKind string

const (
	SendKindAuth      SendErrorKind = "auth"
	SendKindProvider  SendErrorKind = "provider"
	SendKindTransport SendErrorKind = "transport"
)

// SendError is the typed failure returned by the messaging gateway.
type SendError struct {
	Kind SendErrorKind
	Code string // provider-reported error string, e.g. "channel_not_found"
	Err  error  // underlying transport error, nil for provider responses
}

func (e *SendError) Error() string {
	switch {
	case e.Code != "":
		return fmt.Sprintf("slack %s error: %s", e.Kind, e.Code)
	case e.Err != nil:
		return fmt.Sprintf("slack %s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("slack %s error", e.Kind)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

func NewAuthError(code string) error {
	return &SendError{Kind: SendKindAuth, Code: code}
}

func NewProviderError(code string) error {
	return &SendError{Kind: SendKindProvider, Code: code}
}

func NewTransportError(err error) error {
	return &SendError{Kind: SendKindTransport, Err: err}
}

// AsSendError extracts a SendError from an error chain.
func AsSendError(err error) (*SendError, bool) {
	var se *SendError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
