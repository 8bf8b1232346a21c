package gopdf

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid gopdf configuration")
	// ErrNoResult is returned when saving before any successful conversion
	ErrNoResult = errors.New("a fatal error occurred while trying to save the file to disk: no conversion result")
	// ErrHostedResult is returned when saving a result the server kept remotely
	ErrHostedResult = errors.New("result is a hosted file reference, not document bytes")

	// Sentinels matched by APIError through errors.Is
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidAPIKey  = errors.New("invalid API key")
	ErrNoCredits      = errors.New("no credits")
	ErrRateLimit      = errors.New("rate limited")
	ErrServer         = errors.New("server error")
	ErrProtocol       = errors.New("protocol error")
)

// Kind classifies a failed conversion
type Kind int

const (
	// KindProtocol covers undecodable responses and transport failures
	KindProtocol Kind = iota
	// KindInvalidRequest is returned for HTTP 400
	KindInvalidRequest
	// KindInvalidAPIKey is returned for HTTP 401
	KindInvalidAPIKey
	// KindNoCredits is returned for HTTP 403
	KindNoCredits
	// KindRateLimit is returned for HTTP 429
	KindRateLimit
	// KindServer is returned for every other status
	KindServer
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindInvalidAPIKey:
		return "invalid_api_key"
	case KindNoCredits:
		return "no_credits"
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server_error"
	default:
		return "protocol_error"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidRequest:
		return ErrInvalidRequest
	case KindInvalidAPIKey:
		return ErrInvalidAPIKey
	case KindNoCredits:
		return ErrNoCredits
	case KindRateLimit:
		return ErrRateLimit
	case KindServer:
		return ErrServer
	default:
		return ErrProtocol
	}
}

// Fixed messages used by the classifier
const (
	msgInvalidResponse = "invalid response from server"
	msgInvalidRequest  = "invalid request"
	msgInvalidAPIKey   = "please indicate a valid API key"
	msgNoCredits       = "no remaining credits left"
	msgRateLimit       = "rate limit exceeded"
	msgServer          = "a fatal error occurred"
)

// APIError is the outcome of a failed conversion.
//
// Body holds the decoded response body and is nil when the body could not be
// decoded or the request never reached the server. Err holds the transport
// error for protocol failures.
type APIError struct {
	Kind    Kind
	Code    int
	Message string
	Body    map[string]any
	Err     error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gopdf %s (%d): %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("gopdf %s (%d): %s", e.Kind, e.Code, e.Message)
}

// Unwrap returns the underlying transport error, if any
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind
func (e *APIError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// IsInvalidRequest checks if the server rejected the request options
func (e *APIError) IsInvalidRequest() bool {
	return e.Kind == KindInvalidRequest
}

// IsInvalidAPIKey checks if the API key was refused
func (e *APIError) IsInvalidAPIKey() bool {
	return e.Kind == KindInvalidAPIKey
}

// IsNoCredits checks if the account has run out of credits
func (e *APIError) IsNoCredits() bool {
	return e.Kind == KindNoCredits
}

// IsRateLimit checks if the request was throttled
func (e *APIError) IsRateLimit() bool {
	return e.Kind == KindRateLimit
}

// IsServerError checks if the server failed to convert the document
func (e *APIError) IsServerError() bool {
	return e.Kind == KindServer
}

// IsProtocolError checks if the response could not be understood or never arrived
func (e *APIError) IsProtocolError() bool {
	return e.Kind == KindProtocol
}

func newInvalidRequest(message string, body map[string]any) *APIError {
	return &APIError{Kind: KindInvalidRequest, Code: 400, Message: message, Body: body}
}

func newInvalidAPIKey(body map[string]any) *APIError {
	return &APIError{Kind: KindInvalidAPIKey, Code: 401, Message: msgInvalidAPIKey, Body: body}
}

func newNoCredits(body map[string]any) *APIError {
	return &APIError{Kind: KindNoCredits, Code: 403, Message: msgNoCredits, Body: body}
}

func newRateLimit(body map[string]any) *APIError {
	return &APIError{Kind: KindRateLimit, Code: 429, Message: msgRateLimit, Body: body}
}

func newServerError(body map[string]any) *APIError {
	return &APIError{Kind: KindServer, Code: 500, Message: msgServer, Body: body}
}

func newProtocolError(err error) *APIError {
	return &APIError{Kind: KindProtocol, Code: 500, Message: msgInvalidResponse, Err: err}
}
