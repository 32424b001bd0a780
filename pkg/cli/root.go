package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
)

// output receives command results. Logs go to stderr.
var output io.Writer = os.Stdout

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// NewRootCommand creates the root command
func NewRootCommand() *Command {
	root := &Command{
		Name:        "weaver",
		Description: "Weaver - marker-driven protobuf build editing",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("weaver", flag.ExitOnError),
	}

	// Add subcommands
	root.Subcommands["build"] = newBuildCommand()
	root.Subcommands["watch"] = newWatchCommand()
	root.Subcommands["markers"] = newMarkersCommand()
	root.Subcommands["validate"] = newValidateCommand()

	return root
}

// Execute runs the command with the process arguments
func (c *Command) Execute() error {
	return c.run(os.Args[1:])
}

func (c *Command) run(args []string) error {
	if len(args) == 0 {
		return c.usage()
	}

	// Check for help flag
	if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		return c.usage()
	}

	// Check for subcommand
	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(output, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(output, "Commands:\n")
	for _, name := range names {
		fmt.Fprintf(output, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}
