package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
)

type recorderKey struct{}

// requestRecorder holds the outgoing request of a single call. Each call gets
// its own recorder through the request context, so concurrent calls on one
// transport never observe each other's requests.
type requestRecorder struct {
	captured bool
	info     RequestInfo
}

func withRecorder(ctx context.Context) (context.Context, *requestRecorder) {
	rec := &requestRecorder{}
	return context.WithValue(ctx, recorderKey{}, rec), rec
}

// recordRequest is installed as the resty pre-request hook. It runs after
// resty has resolved the base URL, query string and default headers.
func recordRequest(_ *resty.Client, req *http.Request) error {
	rec, ok := req.Context().Value(recorderKey{}).(*requestRecorder)
	if !ok || rec == nil {
		return nil
	}

	rec.info = describeRequest(req)
	if req.GetBody != nil {
		if rc, err := req.GetBody(); err == nil {
			raw, readErr := io.ReadAll(rc)
			rc.Close()
			if readErr == nil {
				rec.info.Body = string(raw)
			}
		}
	}
	rec.captured = true
	return nil
}

// request returns the captured request, falling back to what resty reports
// on the response when the hook did not run (for example when an injected
// client had its hook replaced).
func (r *requestRecorder) request(resp *resty.Response, body []byte) RequestInfo {
	if r.captured {
		return r.info
	}
	info := RequestInfo{Body: string(body), Headers: http.Header{}}
	if resp != nil && resp.Request != nil && resp.Request.RawRequest != nil {
		info = describeRequest(resp.Request.RawRequest)
		info.Body = string(body)
	}
	return info
}

func describeRequest(req *http.Request) RequestInfo {
	info := RequestInfo{
		Method:  req.Method,
		Headers: req.Header.Clone(),
	}
	if info.Headers == nil {
		info.Headers = http.Header{}
	}
	if req.URL != nil {
		info.URI = req.URL.String()
	}
	return info
}
