package reporters

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/jsonapi-client/pkg/transport"
)

const (
	maxSummaryBodyBytes = 1 << 20 // 1 MiB
	maxSummaryLen       = 200
)

// summarize returns a one-line description of the response body. HTML error
// pages (typically from proxies and gateways) are reduced to their title and
// description, JSON bodies to their error message.
func summarize(resp transport.ResponseInfo) string {
	body := []byte(strings.TrimSpace(resp.Body))
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxSummaryBodyBytes {
		body = body[:maxSummaryBodyBytes]
	}

	var summary string
	switch {
	case isHTML(resp, body):
		summary = htmlSummary(body)
	case body[0] == '{':
		summary = jsonSummary(body)
	}
	if summary == "" {
		summary = firstLine(string(body))
	}
	return truncate(summary, maxSummaryLen)
}

func isHTML(resp transport.ResponseInfo, body []byte) bool {
	for _, ct := range resp.Header.Values("Content-Type") {
		if strings.Contains(strings.ToLower(ct), "html") {
			return true
		}
	}
	return body[0] == '<'
}

func htmlSummary(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	title := firstNonEmpty(
		strings.TrimSpace(doc.Find("title").First().Text()),
		strings.TrimSpace(doc.Find("h1").First().Text()),
	)
	desc := firstNonEmpty(
		extract(`meta[name="description"]`),
		extract(`meta[property="og:description"]`),
	)
	if title != "" && desc != "" && title != desc {
		return collapseSpace(title + ": " + desc)
	}
	return collapseSpace(firstNonEmpty(title, desc))
}

// jsonSummary looks for the usual error message fields, including one level
// of nesting such as {"error":{"message":"..."}}.
func jsonSummary(body []byte) string {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	return messageField(doc, 1)
}

var messageKeys = []string{"message", "error", "detail", "title", "error_description"}

func messageField(doc map[string]any, depth int) string {
	for _, key := range messageKeys {
		switch v := doc[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return collapseSpace(s)
			}
		case map[string]any:
			if depth > 0 {
				if s := messageField(v, depth-1); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
