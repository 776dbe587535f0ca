// Command routecore provides CLI utilities for the routing-attribute
// evaluator and pin-point placement engine.
package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/mapgrid/routecore/internal/vars"
)

type rootCmd struct {
	Version versionCmd `command:"version" description:"Show version information"`
	Eval    evalCmd    `command:"eval" description:"Evaluate router attributes for a road against a config"`
	Pins    pinsCmd    `command:"pins" description:"Compute pin-point placement for a path"`
}

func main() {
	var root rootCmd
	parser := flags.NewParser(&root, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}

type versionCmd struct{}

// Execute prints the version information.
func (c *versionCmd) Execute(_ []string) error {
	vars.Print()
	os.Exit(0)
	return nil
}
