package main

import (
	"fmt"

	"github.com/shibukawa/deepget/accessor"
)

// DescribeCmd represents the describe command
type DescribeCmd struct {
	Path string   `arg:"" help:"Access path"`
	Var  []string `long:"var" sep:"none" help:"Captured variable (name=CEL expression)"`
}

// Run executes the describe command
func (d *DescribeCmd) Run(ctx *Context) error {
	captures, err := buildCaptures(ctx.Config, d.Var, nil)
	if err != nil {
		return fmt.Errorf("failed to evaluate variables: %w", err)
	}

	path, err := preparePath(d.Path, captures)
	if err != nil {
		return err
	}

	description, err := accessor.Describe(path)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Stdout, description)

	return nil
}
