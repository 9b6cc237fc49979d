package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/jsonapi-client/internal/config"
	"github.com/samvad-hq/jsonapi-client/internal/logger"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	ctype  string
	body   []byte
}

func newAPIServer(t *testing.T, status int, response string, seen *recordedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if seen != nil {
			*seen = recordedRequest{
				method: r.Method,
				path:   r.URL.Path,
				query:  r.URL.RawQuery,
				ctype:  r.Header.Get("Content-Type"),
				body:   body,
			}
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestCommand(t *testing.T, endpoint string) (*Command, *cli.MockUi) {
	t.Helper()
	ui := cli.NewMockUi()
	return &Command{
		Ctx: context.Background(),
		UI:  ui,
		Log: logger.NopLogger{},
		Config: &config.Config{
			APIEndpoint:            endpoint,
			APITimeoutSeconds:      2,
			APITimeout:             2 * time.Second,
			JournalType:            "bbolt",
			JournalPath:            filepath.Join(t.TempDir(), "failures.db"),
			JournalTTL:             time.Hour,
			JournalCleanupInterval: time.Hour,
		},
	}, ui
}

func TestGetCommand(t *testing.T) {
	var seen recordedRequest
	srv := newAPIServer(t, http.StatusOK, `{"id":7,"name":"widget"}`, &seen)
	base, ui := newTestCommand(t, srv.URL)

	code := (&GetCommand{Command: base}).Run([]string{"items/7"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	assert.Equal(t, http.MethodGet, seen.method)
	assert.Equal(t, "/items/7", seen.path)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(ui.OutputWriter.String()), &out))
	assert.Equal(t, "widget", out["name"])
}

func TestGetCommandUsage(t *testing.T) {
	base, _ := newTestCommand(t, "http://example.com")
	assert.Equal(t, cli.RunResultHelp, (&GetCommand{Command: base}).Run(nil))
	assert.Equal(t, cli.RunResultHelp, (&GetCommand{Command: base}).Run([]string{"-nope", "items"}))
}

func TestGetCommandEndpointFlagOverridesConfig(t *testing.T) {
	var seen recordedRequest
	srv := newAPIServer(t, http.StatusOK, `{}`, &seen)
	base, ui := newTestCommand(t, "")

	code := (&GetCommand{Command: base}).Run([]string{"-endpoint", srv.URL, "-timeout", "1", "items"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Equal(t, "/items", seen.path)
}

func TestGetCommandMissingEndpoint(t *testing.T) {
	base, ui := newTestCommand(t, "")

	code := (&GetCommand{Command: base}).Run([]string{"items"})
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.ErrorWriter.String(), "endpoint not set")
}

func TestListCommandSendsQuery(t *testing.T) {
	var seen recordedRequest
	srv := newAPIServer(t, http.StatusOK, `{"items":[]}`, &seen)
	base, ui := newTestCommand(t, srv.URL)

	code := (&ListCommand{Command: base}).Run([]string{"-q", "status=open", "-q", "page=2", "items"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Equal(t, "page=2&status=open", seen.query)
}

func TestListCommandPrintsArrayResponse(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, `[{"id":1},{"id":2}]`, nil)
	base, ui := newTestCommand(t, srv.URL)

	code := (&ListCommand{Command: base}).Run([]string{"items"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, ui.OutputWriter.String())
}

func TestListCommandRejectsMalformedQuery(t *testing.T) {
	base, _ := newTestCommand(t, "http://example.com")
	assert.Equal(t, cli.RunResultHelp, (&ListCommand{Command: base}).Run([]string{"-q", "novalue", "items"}))
}

func TestWriteCommandsUseMatchingMethod(t *testing.T) {
	tests := []struct {
		verb   writeVerb
		status int
		method string
	}{
		{verbCreate, http.StatusCreated, http.MethodPost},
		{verbUpdate, http.StatusOK, http.MethodPut},
		{verbPatch, http.StatusOK, http.MethodPatch},
	}

	for _, tt := range tests {
		t.Run(string(tt.verb), func(t *testing.T) {
			var seen recordedRequest
			srv := newAPIServer(t, tt.status, `{"id":1,"count":12345678901234567}`, &seen)
			base, ui := newTestCommand(t, srv.URL)

			cmd := &WriteCommand{Command: base, verb: tt.verb}
			code := cmd.Run([]string{"-d", `{"count":12345678901234567}`, "items"})
			require.Equal(t, 0, code, ui.ErrorWriter.String())

			assert.Equal(t, tt.method, seen.method)
			assert.Equal(t, "application/json", seen.ctype)
			assert.JSONEq(t, `{"count":12345678901234567}`, string(seen.body))
		})
	}
}

func TestWriteCommandReadsYAMLFile(t *testing.T) {
	var seen recordedRequest
	srv := newAPIServer(t, http.StatusCreated, `{"id":1}`, &seen)
	base, ui := newTestCommand(t, srv.URL)

	path := filepath.Join(t.TempDir(), "item.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: widget\ntags:\n  - a\n  - b\n"), 0o644))

	code := (&WriteCommand{Command: base, verb: verbCreate}).Run([]string{"-f", path, "items"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.JSONEq(t, `{"name":"widget","tags":["a","b"]}`, string(seen.body))
}

func TestLoadPayload(t *testing.T) {
	_, err := loadPayload("", "")
	assert.Error(t, err)

	_, err = loadPayload(`{}`, "x.json")
	assert.Error(t, err)

	_, err = loadPayload(`{"broken"`, "")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "item.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o644))
	got, err := loadPayload("", path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": json.Number("1")}, got)
}

func TestDeleteCommand(t *testing.T) {
	var seen recordedRequest
	srv := newAPIServer(t, http.StatusNoContent, "", &seen)
	base, ui := newTestCommand(t, srv.URL)

	code := (&DeleteCommand{Command: base}).Run([]string{"items/3"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Equal(t, http.MethodDelete, seen.method)
	assert.Contains(t, ui.OutputWriter.String(), "Deleted items/3")
}

func TestUnexpectedStatusIsJournaledAndListed(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, "", nil)
	base, ui := newTestCommand(t, srv.URL)

	// DELETE only accepts 204.
	code := (&DeleteCommand{Command: base}).Run([]string{"items/3"})
	require.Equal(t, 1, code)
	assert.Contains(t, ui.ErrorWriter.String(), "request failed (failure ")
	assert.Contains(t, ui.ErrorWriter.String(), "unexpected status code")

	listUI := cli.NewMockUi()
	base.UI = listUI
	require.Equal(t, 0, (&FailuresCommand{Command: base}).Run(nil), listUI.ErrorWriter.String())

	var entries []struct {
		ID      string `json:"id"`
		Failure struct {
			Method string `json:"method"`
			Status int    `json:"status"`
		} `json:"failure"`
	}
	require.NoError(t, json.Unmarshal([]byte(listUI.OutputWriter.String()), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, http.MethodDelete, entries[0].Failure.Method)
	assert.Equal(t, http.StatusOK, entries[0].Failure.Status)
}

func TestFailuresCommandEmptyJournal(t *testing.T) {
	base, ui := newTestCommand(t, "")
	base.Config.JournalType = "none"

	require.Equal(t, 0, (&FailuresCommand{Command: base}).Run(nil))
	assert.Equal(t, "[]\n", ui.OutputWriter.String())
}

func TestMainVersion(t *testing.T) {
	ui := cli.NewMockUi()
	code := Main(context.Background(), "jsonapi", []string{"-v"}, &config.Config{}, logger.NopLogger{}, ui)
	assert.Equal(t, 0, code)
	assert.Equal(t, Version+"\n", ui.OutputWriter.String())
}
