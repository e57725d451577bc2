package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/shibukawa/deepget"
)

const version = "v0.1.0"

// Context represents the global context for commands
type Context struct {
	Config *deepget.Config
	Logger hclog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// CLI represents the command-line interface
type CLI struct {
	Config   string      `help:"Configuration file path" default:"deepget.yaml"`
	LogLevel string      `help:"Log level (trace, debug, info, warn, error, off); overrides the config file" name:"log-level"`
	NoColor  bool        `help:"Disable colored output" name:"no-color"`
	Eval     EvalCmd     `cmd:"" help:"Evaluate an access path against a YAML or JSON document"`
	Check    CheckCmd    `cmd:"" help:"Validate access paths without evaluating them"`
	Describe DescribeCmd `cmd:"" help:"Print the chain description of an access path"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintf(ctx.Stdout, "deepget %s\n", version)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	var cli CLI

	exitCode := -1

	parser, err := kong.New(&cli,
		kong.Name("deepget"),
		kong.Description("Evaluate chained access paths against documents."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help was handled by kong
		return exitCode
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	config, err := deepget.LoadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load config: %v\n", err)
		return 1
	}

	level := config.Level()
	if cli.LogLevel != "" {
		level = hclog.LevelFromString(cli.LogLevel)
		if level == hclog.NoLevel {
			fmt.Fprintf(stderr, "Error: %v: %s\n", ErrInvalidLogLevel, cli.LogLevel)
			return 2
		}
	}

	color.NoColor = cli.NoColor || !config.Output.ColorEnabled(!color.NoColor)

	appCtx := &Context{
		Config: config,
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "deepget",
			Level:  level,
			Output: stderr,
			Color:  hclog.AutoColor,
		}),
		Stdout: stdout,
		Stderr: stderr,
	}

	err = kctx.Run(appCtx)
	if err == nil {
		return 0
	}

	// Short-circuits have already been reported with their trace
	if !errors.Is(err, ErrShortCircuit) {
		color.New(color.FgRed).Fprintf(stderr, "Error: %v\n", err)
	}

	return 1
}
