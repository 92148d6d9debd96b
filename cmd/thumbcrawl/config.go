package main

import (
	"fmt"

	"github.com/fwojciec/thumbcrawl"
	"github.com/fwojciec/thumbcrawl/yaml"
)

// Run executes the config command.
func (c *ConfigCmd) Run(deps *Dependencies) error {
	if err := yaml.Encode(deps.Stdout, deps.Config); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", thumbcrawl.ErrorMessage(err))
		return err
	}
	return nil
}
