package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/shibukawa/deepget/accessor"
	"github.com/shibukawa/deepget/explang"
)

// CheckCmd represents the check command
type CheckCmd struct {
	Paths []string `arg:"" optional:"" sep:"none" help:"Access paths to validate; paths in the config file are always included"`
	Input string   `short:"i" long:"input" help:"Input document for variables that read it" type:"path"`
	Var   []string `long:"var" sep:"none" help:"Captured variable (name=CEL expression)"`
}

// Run executes the check command
func (c *CheckCmd) Run(ctx *Context) error {
	paths := append(append([]string{}, ctx.Config.Paths...), c.Paths...)
	if len(paths) == 0 {
		return ErrNoPaths
	}

	var doc any

	input := c.Input
	if input == "" {
		input = ctx.Config.Input
	}

	if input != "" {
		var err error

		doc, err = loadDocument(input)
		if err != nil {
			return err
		}
	}

	captures, err := buildCaptures(ctx.Config, c.Var, doc)
	if err != nil {
		return fmt.Errorf("failed to evaluate variables: %w", err)
	}

	cache := accessor.NewValidityCache()

	var errs *multierror.Error

	for _, expr := range paths {
		err := checkPath(cache, expr, captures)
		if err != nil {
			color.New(color.FgRed).Fprintf(ctx.Stdout, "✗ %s\n", expr)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", expr, err))

			continue
		}

		color.New(color.FgGreen).Fprintf(ctx.Stdout, "✓ %s\n", expr)
	}

	stats := cache.Stats()
	ctx.Logger.Debug("check finished", "paths", len(paths), "shapes", stats.Entries, "repeated", stats.Hits)

	return errs.ErrorOrNil()
}

func checkPath(cache *accessor.ValidityCache, expr string, captures map[string]any) error {
	path, err := preparePath(expr, captures)
	if err != nil {
		return err
	}

	return cache.CheckOrFail(path.String(), func() error {
		return explang.CheckConstantArguments(path)
	})
}
