// Package cmd implements the jsonapi command line interface.
package cmd

import (
	"context"

	"github.com/mitchellh/cli"

	"github.com/samvad-hq/jsonapi-client/internal/config"
	"github.com/samvad-hq/jsonapi-client/internal/logger"
)

// Version is the CLI version, overridden at build time with -ldflags.
var Version = "0.1.0-dev"

// Main runs the CLI with the given arguments (without the program name) and
// returns the exit code.
func Main(ctx context.Context, name string, args []string, cfg *config.Config, log logger.Logger, ui cli.Ui) int {
	if len(args) == 1 && (args[0] == "-version" || args[0] == "-v") {
		args = []string{"version"}
	}

	base := &Command{
		Ctx:    ctx,
		UI:     ui,
		Log:    log,
		Config: cfg,
	}

	c := &cli.CLI{
		Name:     name,
		Args:     args,
		Version:  Version,
		Commands: Commands(base),
	}

	exitCode, err := c.Run()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	return exitCode
}

// Commands returns the command factories keyed by command name.
func Commands(base *Command) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"get": func() (cli.Command, error) {
			return &GetCommand{Command: base}, nil
		},
		"list": func() (cli.Command, error) {
			return &ListCommand{Command: base}, nil
		},
		"create": func() (cli.Command, error) {
			return &WriteCommand{Command: base, verb: verbCreate}, nil
		},
		"update": func() (cli.Command, error) {
			return &WriteCommand{Command: base, verb: verbUpdate}, nil
		},
		"patch": func() (cli.Command, error) {
			return &WriteCommand{Command: base, verb: verbPatch}, nil
		},
		"delete": func() (cli.Command, error) {
			return &DeleteCommand{Command: base}, nil
		},
		"failures": func() (cli.Command, error) {
			return &FailuresCommand{Command: base}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{Command: base}, nil
		},
	}
}
