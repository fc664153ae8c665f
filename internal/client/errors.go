package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a request failure.
type Kind int

const (
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP Kind = iota
	// KindNetwork means no response arrived (unreachable host, timeout).
	KindNetwork
	// KindDecode means the response body was not the expected JSON.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// RequestError is the uniform failure returned by every client method.
// StatusCode is zero unless Kind is KindHTTP, so callers can branch on the
// numeric status without string parsing.
type RequestError struct {
	Endpoint   string
	Kind       Kind
	StatusCode int
	Detail     string
	Err        error
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case KindHTTP:
		if e.Detail != "" {
			return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Detail)
		}
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.StatusCode)
	case KindNetwork:
		return fmt.Sprintf("%s: request failed: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("%s: decoding response: %v", e.Endpoint, e.Err)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an HTTP failure with the given status.
func IsStatus(err error, status int) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == KindHTTP && re.StatusCode == status
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool { return IsStatus(err, http.StatusNotFound) }

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool { return IsStatus(err, http.StatusUnauthorized) }

// IsNetwork reports whether err means the server was never reached.
func IsNetwork(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == KindNetwork
}

// IsDecode reports whether err means the response body could not be parsed.
func IsDecode(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == KindDecode
}
