package transport

import (
	"context"
	"net/url"
	"time"
)

const (
	// DefaultContentType is sent on every write request.
	DefaultContentType = "application/json"

	// DefaultTimeout applies when no timeout is configured.
	DefaultTimeout = 3 * time.Second
)

// Transport performs the HTTP exchange for a resource client. Bodies are
// already JSON encoded on the way in and returned undecoded on the way out.
type Transport interface {
	Get(ctx context.Context, uri string, query url.Values) ([]byte, error)
	Post(ctx context.Context, uri string, body []byte) ([]byte, error)
	Patch(ctx context.Context, uri string, body []byte) ([]byte, error)
	Put(ctx context.Context, uri string, body []byte) ([]byte, error)
	Delete(ctx context.Context, uri string) error
}

// Logger defines the logging surface the transport relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
