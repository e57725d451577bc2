package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/shibukawa/deepget"
	"github.com/shibukawa/deepget/accessor"
)

// EvalCmd represents the eval command
type EvalCmd struct {
	Path   string   `arg:"" help:"Access path, e.g. x.items[$idx].name"`
	Input  string   `short:"i" long:"input" help:"Input document (YAML or JSON); defaults to input in the config file" type:"path"`
	Var    []string `long:"var" sep:"none" help:"Captured variable (name=CEL expression); overrides vars in the config file"`
	Format string   `short:"f" long:"format" help:"Output format (yaml, json, table); defaults to output.format in the config file"`
	Dump   bool     `long:"dump" help:"Dump the value with Go types instead of formatting it"`
}

// Run executes the eval command
func (e *EvalCmd) Run(ctx *Context) error {
	format := strings.ToLower(e.Format)
	if format == "" {
		format = ctx.Config.Output.Format
	}

	if format != deepget.FormatYAML && format != deepget.FormatJSON && format != deepget.FormatTable {
		return fmt.Errorf("%w: %s", ErrInvalidOutputFormat, format)
	}

	input := e.Input
	if input == "" {
		input = ctx.Config.Input
	}

	if input == "" {
		return ErrNoInput
	}

	doc, err := loadDocument(input)
	if err != nil {
		return err
	}

	captures, err := buildCaptures(ctx.Config, e.Var, doc)
	if err != nil {
		return fmt.Errorf("failed to evaluate variables: %w", err)
	}

	path, err := preparePath(e.Path, captures)
	if err != nil {
		return err
	}

	ctx.Logger.Debug("evaluating", "path", path.String(), "input", input)

	acc := accessor.New(accessor.WithLogger(ctx.Logger.Named("accessor")))

	res, err := acc.Evaluate(doc, path, nil)
	if err != nil {
		return err
	}

	if !res.Found {
		writeTrace(ctx.Stdout, res.Chain)
		color.New(color.FgYellow).Fprintf(ctx.Stderr, "%s\n", accessor.FormatChain(res.Chain))

		return ErrShortCircuit
	}

	if e.Dump {
		dumpValue(ctx.Stdout, res.Value)
		return nil
	}

	return writeValue(ctx.Stdout, format, res)
}
