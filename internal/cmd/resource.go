package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mitchellh/cli"
)

// GetCommand fetches a single resource and prints it as JSON.
type GetCommand struct {
	*Command

	api apiFlags
}

func (c *GetCommand) Synopsis() string {
	return "Fetch a single resource"
}

func (c *GetCommand) Help() string {
	return `Usage: jsonapi get [options] <uri>

  Fetches the resource at <uri>, relative to the configured endpoint, and
  prints it as JSON.` + apiFlagsHelp
}

func (c *GetCommand) Run(args []string) int {
	f := newFlagSet("get")
	c.api.register(f)
	rest, ok := c.parse(f, args, 1)
	if !ok {
		return cli.RunResultHelp
	}

	rt, err := c.runtime(c.api)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer c.closeRuntime(rt)

	resource, err := rt.Client().GetResource(c.context(), rest[0])
	if err != nil {
		return c.fail(rt, err)
	}
	return c.output(resource)
}

// queryFlag collects repeated -q key=value flags.
type queryFlag url.Values

func (q queryFlag) String() string {
	return url.Values(q).Encode()
}

func (q queryFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("query parameter %q must be key=value", value)
	}
	url.Values(q).Add(strings.TrimSpace(key), val)
	return nil
}

// ListCommand fetches a collection, passing -q flags as query parameters.
type ListCommand struct {
	*Command

	api   apiFlags
	query queryFlag
}

func (c *ListCommand) Synopsis() string {
	return "Fetch a collection of resources"
}

func (c *ListCommand) Help() string {
	return `Usage: jsonapi list [options] <uri>

  Fetches the collection at <uri> and prints it as JSON. Filters are passed
  as repeated -q flags and sent as query parameters.` + apiFlagsHelp + `
  -q=<key=value>       Query parameter. May be repeated.`
}

func (c *ListCommand) Run(args []string) int {
	c.query = queryFlag{}
	f := newFlagSet("list")
	c.api.register(f)
	f.Var(c.query, "q", "Query parameter as key=value. May be repeated.")
	rest, ok := c.parse(f, args, 1)
	if !ok {
		return cli.RunResultHelp
	}

	rt, err := c.runtime(c.api)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer c.closeRuntime(rt)

	resources, err := rt.Client().GetResources(c.context(), rest[0], url.Values(c.query))
	if err != nil {
		return c.fail(rt, err)
	}
	return c.output(resources)
}

// DeleteCommand deletes a resource.
type DeleteCommand struct {
	*Command

	api apiFlags
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete a resource"
}

func (c *DeleteCommand) Help() string {
	return `Usage: jsonapi delete [options] <uri>

  Deletes the resource at <uri>. The API must answer 204 No Content.` + apiFlagsHelp
}

func (c *DeleteCommand) Run(args []string) int {
	f := newFlagSet("delete")
	c.api.register(f)
	rest, ok := c.parse(f, args, 1)
	if !ok {
		return cli.RunResultHelp
	}

	rt, err := c.runtime(c.api)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}
	defer c.closeRuntime(rt)

	if err := rt.Client().DeleteResource(c.context(), rest[0]); err != nil {
		return c.fail(rt, err)
	}
	c.UI.Info(fmt.Sprintf("Deleted %s", rest[0]))
	return 0
}
