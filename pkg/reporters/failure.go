package reporters

import (
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samvad-hq/jsonapi-client/pkg/transport"
)

const (
	// maxFailureBodyBytes caps request and response bodies carried in a
	// Failure so queue messages stay well under the SQS/SNS size limit.
	maxFailureBodyBytes = 512

	redacted = "[REDACTED]"
)

// credentialHeaders never leave the process in a Failure.
var credentialHeaders = []string{
	"Authorization",
	"Proxy-Authorization",
	"Cookie",
	"Set-Cookie",
	"X-Api-Key",
}

// Failure represents the payload reported downstream for an API call that
// came back with an unexpected status.
type Failure struct {
	ID         string              `json:"id"`
	Method     string              `json:"method"`
	URI        string              `json:"uri"`
	Status     int                 `json:"status"`
	Summary    string              `json:"summary,omitempty"`
	Debug      transport.DebugInfo `json:"debug"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// NewFailure constructs a Failure from a transport status error. Credential
// headers are redacted and bodies truncated; err itself is left untouched.
func NewFailure(err *transport.UnexpectedStatusError) Failure {
	f := Failure{
		ID:         uuid.NewString(),
		OccurredAt: time.Now().UTC(),
	}
	if err == nil {
		return f
	}
	f.Method = err.Debug.Request.Method
	f.URI = err.Debug.Request.URI
	f.Status = err.StatusCode()
	f.Summary = summarize(err.Debug.Response)
	f.Debug = sanitizeDebug(err.Debug)
	return f
}

func sanitizeDebug(d transport.DebugInfo) transport.DebugInfo {
	d.Request.Headers = redactHeaders(d.Request.Headers)
	d.Request.Body = capBody(d.Request.Body)
	d.Response.Header = redactHeaders(d.Response.Header)
	d.Response.Body = capBody(d.Response.Body)
	return d
}

func redactHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	out := h.Clone()
	for _, name := range credentialHeaders {
		for key := range out {
			if http.CanonicalHeaderKey(key) == name {
				out[key] = []string{redacted}
			}
		}
	}
	return out
}

// capBody truncates s to maxFailureBodyBytes without splitting a rune.
func capBody(s string) string {
	if len(s) <= maxFailureBodyBytes {
		return s
	}
	cut := maxFailureBodyBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
