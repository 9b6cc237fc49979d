package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/mitchellh/cli"

	"github.com/samvad-hq/jsonapi-client/internal/app"
	"github.com/samvad-hq/jsonapi-client/internal/config"
	"github.com/samvad-hq/jsonapi-client/internal/logger"
)

// Command carries the dependencies shared by every subcommand.
type Command struct {
	Ctx    context.Context
	UI     cli.Ui
	Log    logger.Logger
	Config *config.Config
}

// apiFlags are the connection overrides accepted by commands that talk to the API.
type apiFlags struct {
	endpoint string
	timeout  int
}

func (a *apiFlags) register(f *flag.FlagSet) {
	f.StringVar(&a.endpoint, "endpoint", "", "Base URL of the API. Overrides API_ENDPOINT.")
	f.IntVar(&a.timeout, "timeout", 0, "Request timeout in seconds. Overrides API_TIMEOUT_SECONDS.")
}

const apiFlagsHelp = `

Options:

  -endpoint=<url>      Base URL of the API. Overrides API_ENDPOINT.
  -timeout=<seconds>   Request timeout in seconds. Overrides API_TIMEOUT_SECONDS.`

// newFlagSet returns a flag set that reports parse errors to the caller
// instead of exiting.
func newFlagSet(name string) *flag.FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	return f
}

// parse parses args and returns the remaining positional arguments. ok is
// false when the command should print its help.
func (c *Command) parse(f *flag.FlagSet, args []string, positional int) ([]string, bool) {
	if err := f.Parse(args); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		}
		return nil, false
	}
	rest := f.Args()
	if len(rest) != positional {
		c.UI.Error(fmt.Sprintf("expected %d argument(s), got %d", positional, len(rest)))
		return nil, false
	}
	return rest, true
}

// runtime builds an app runtime from the loaded config with flag overrides applied.
func (c *Command) runtime(flags apiFlags) (*app.Runtime, error) {
	var cfg config.Config
	if c.Config != nil {
		cfg = *c.Config
	}
	if flags.endpoint != "" {
		cfg.APIEndpoint = flags.endpoint
	}
	if flags.timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative")
	}
	if flags.timeout > 0 {
		cfg.APITimeoutSeconds = int64(flags.timeout)
		cfg.APITimeout = time.Duration(flags.timeout) * time.Second
	}
	return app.NewRuntime(c.context(), &cfg, c.Log)
}

func (c *Command) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// fail reports err to the failure reporters when it is a status error and
// prints it. It always returns the failing exit code.
func (c *Command) fail(rt *app.Runtime, err error) int {
	if rt != nil {
		if failure, ok := rt.Report(c.context(), err); ok {
			c.UI.Error(fmt.Sprintf("request failed (failure %s): %v", failure.ID, err))
			if failure.Summary != "" {
				c.UI.Error(fmt.Sprintf("%d: %s", failure.Status, failure.Summary))
			}
			return 1
		}
	}
	c.UI.Error(err.Error())
	return 1
}

// closeRuntime releases rt, logging rather than failing on errors.
func (c *Command) closeRuntime(rt *app.Runtime) {
	if err := rt.Close(); err != nil && c.Log != nil {
		c.Log.ErrorObj("runtime close failed", "error", err.Error())
	}
}

// output prints v as indented JSON.
func (c *Command) output(v any) int {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		c.UI.Error(fmt.Sprintf("error encoding output: %v", err))
		return 1
	}
	c.UI.Output(string(out))
	return 0
}
