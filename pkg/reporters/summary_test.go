package reporters

import (
	"net/http"
	"strings"
	"testing"

	"github.com/samvad-hq/jsonapi-client/pkg/transport"
)

func TestSummarize(t *testing.T) {
	htmlHeader := http.Header{"Content-Type": []string{"text/html; charset=utf-8"}}

	tests := []struct {
		name string
		resp transport.ResponseInfo
		want string
	}{
		{
			name: "html title and description",
			resp: transport.ResponseInfo{Header: htmlHeader, Body: `
<html><head>
  <title>502 Bad Gateway</title>
  <meta name="description" content="upstream   timed out">
</head><body><h1>Bad Gateway</h1></body></html>`},
			want: "502 Bad Gateway: upstream timed out",
		},
		{
			name: "html heading fallback without header",
			resp: transport.ResponseInfo{Body: `<html><body><h1> Service
  Unavailable </h1></body></html>`},
			want: "Service Unavailable",
		},
		{
			name: "json message",
			resp: transport.ResponseInfo{Body: `{"message":"item not found","code":404}`},
			want: "item not found",
		},
		{
			name: "nested json error",
			resp: transport.ResponseInfo{Body: `{"error":{"code":"E1","message":"quota exceeded"}}`},
			want: "quota exceeded",
		},
		{
			name: "json without message falls back to body",
			resp: transport.ResponseInfo{Body: `{"code":500}`},
			want: `{"code":500}`,
		},
		{
			name: "plain text first line",
			resp: transport.ResponseInfo{Body: "rate limited\nretry later"},
			want: "rate limited",
		},
		{
			name: "empty",
			resp: transport.ResponseInfo{Body: "  "},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarize(tt.resp); got != tt.want {
				t.Fatalf("summarize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarizeTruncates(t *testing.T) {
	got := summarize(transport.ResponseInfo{Body: strings.Repeat("é", 500)})
	if n := len([]rune(got)); n != maxSummaryLen {
		t.Fatalf("expected %d runes, got %d", maxSummaryLen, n)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", " ", "foo", "bar"); got != "foo" {
		t.Fatalf("firstNonEmpty returned %q", got)
	}
}
