package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindNone marks errors that did not originate from the API client.
	KindNone Kind = iota
	// KindTransport means no response was received (DNS, refused, timeout).
	KindTransport
	// KindUnauthorized means the backend answered 401.
	KindUnauthorized
	// KindAPI covers every other non-success status.
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindAPI:
		return "api"
	default:
		return "none"
	}
}

// FallbackMessage is used when an error body carries neither message nor error.
const FallbackMessage = "request failed"

// Sentinels usable with errors.Is against any *Error.
var (
	ErrTransport    = errors.New("apiclient: transport error")
	ErrUnauthorized = errors.New("apiclient: unauthorized")
	ErrAPI          = errors.New("apiclient: api error")
)

// Error is the single failure shape returned by the client.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Method  string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("%s %s: transport: %v", e.Method, e.Path, e.Err)
	case KindUnauthorized:
		return fmt.Sprintf("%s %s: unauthorized", e.Method, e.Path)
	default:
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrAPI:
		return e.Kind == KindAPI
	}
	return false
}

// KindOf classifies err. Errors from outside the client report KindNone.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNone
}

// Message returns the text a screen should show for err.
func Message(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	switch apiErr.Kind {
	case KindTransport:
		return "No se pudo conectar con el servidor."
	case KindUnauthorized:
		return "No autorizado"
	default:
		return apiErr.Message
	}
}
