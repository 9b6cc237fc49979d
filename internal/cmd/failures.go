package cmd

import (
	"encoding/json"
	"time"

	"github.com/mitchellh/cli"
)

// FailuresCommand lists failures kept in the local journal.
type FailuresCommand struct {
	*Command
}

// failureEntry is one journal entry as printed by FailuresCommand.
type failureEntry struct {
	ID        string          `json:"id"`
	ExpiresAt time.Time       `json:"expires_at"`
	Failure   json.RawMessage `json:"failure"`
}

func (c *FailuresCommand) Synopsis() string {
	return "List recently reported failures"
}

func (c *FailuresCommand) Help() string {
	return `Usage: jsonapi failures

  Lists the unexpected-status failures kept in the local journal, oldest
  first. Expired entries are not shown.`
}

func (c *FailuresCommand) Run(args []string) int {
	if _, ok := c.parse(newFlagSet("failures"), args, 0); !ok {
		return cli.RunResultHelp
	}

	rt, err := c.runtime(apiFlags{})
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer c.closeRuntime(rt)

	entries, err := rt.Journal().List()
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	out := make([]failureEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, failureEntry{
			ID:        e.ID,
			ExpiresAt: e.ExpiresAt.UTC(),
			Failure:   json.RawMessage(e.Payload),
		})
	}
	return c.output(out)
}

// VersionCommand prints the CLI version.
type VersionCommand struct {
	*Command
}

func (c *VersionCommand) Synopsis() string {
	return "Print the version"
}

func (c *VersionCommand) Help() string {
	return "Usage: jsonapi version"
}

func (c *VersionCommand) Run(_ []string) int {
	c.UI.Output(Version)
	return 0
}
