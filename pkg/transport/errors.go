package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnexpectedStatus matches every *UnexpectedStatusError via errors.Is.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// ConfigurationError reports a setting that is missing or invalid at the
// time a request is attempted.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s", e.Setting, e.Reason)
	}
	return fmt.Sprintf("%s not set", e.Setting)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// RequestInfo is a snapshot of an outgoing request.
type RequestInfo struct {
	URI     string      `json:"uri"`
	Method  string      `json:"method"`
	Body    string      `json:"body"`
	Headers http.Header `json:"headers"`
}

// ResponseInfo is a snapshot of a received response.
type ResponseInfo struct {
	Status int         `json:"status"`
	Body   string      `json:"body"`
	Header http.Header `json:"header"`
}

// DebugInfo pairs a response with the request that produced it.
type DebugInfo struct {
	Response ResponseInfo `json:"response"`
	Request  RequestInfo  `json:"request"`
}

// JSON renders the debug payload. Header maps always encode, so the error
// is only surfaced for completeness.
func (d DebugInfo) JSON() (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// UnexpectedStatusError is returned when a response status is not one the
// operation accepts.
type UnexpectedStatusError struct {
	Debug DebugInfo
}

func (e *UnexpectedStatusError) Error() string {
	blob, err := e.Debug.JSON()
	if err != nil {
		return fmt.Sprintf("unexpected status code %d", e.Debug.Response.Status)
	}
	return "unexpected status code " + blob
}

func (e *UnexpectedStatusError) Is(target error) bool { return target == ErrUnexpectedStatus }

// StatusCode returns the response status that triggered the error.
func (e *UnexpectedStatusError) StatusCode() int { return e.Debug.Response.Status }
