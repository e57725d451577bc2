package main

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/shibukawa/deepget"
	"github.com/shibukawa/deepget/accessor"
	"github.com/shibukawa/deepget/binding"
	"github.com/shibukawa/deepget/explang"
)

// loadDocument reads a YAML or JSON document. JSON is read by the YAML
// decoder as well.
func loadDocument(path string) (any, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrInputFileNotExist, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse input file %s: %w", path, err)
	}

	return normalizeNumbers(doc), nil
}

// normalizeNumbers turns unsigned integers decoded by the YAML reader into
// int64 when they fit, so documents mix with CEL int arithmetic.
func normalizeNumbers(v any) any {
	switch n := v.(type) {
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}

		return n
	case []any:
		for i, item := range n {
			n[i] = normalizeNumbers(item)
		}

		return n
	case map[string]any:
		for k, item := range n {
			n[k] = normalizeNumbers(item)
		}

		return n
	default:
		return v
	}
}

// buildCaptures evaluates the captured variables of the config, overridden
// by name=expression pairs given on the command line.
func buildCaptures(config *deepget.Config, overrides []string, doc any) (map[string]any, error) {
	vars := make(map[string]string, len(config.Vars)+len(overrides))
	for name, expr := range config.Vars {
		vars[name] = expr
	}

	for _, pair := range overrides {
		name, expr, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidVar, pair)
		}

		vars[strings.TrimSpace(name)] = expr
	}

	if len(vars) == 0 {
		return map[string]any{}, nil
	}

	ev, err := binding.NewEvaluator()
	if err != nil {
		return nil, err
	}

	return ev.Bind(vars, doc)
}

// preparePath parses expr and freezes its captured variables.
func preparePath(expr string, captures map[string]any) (*explang.Path, error) {
	path, err := explang.Parse(expr, &explang.ParseOptions{Captures: captures})
	if err != nil {
		return nil, err
	}

	return explang.SubstituteCaptures(path, accessor.ReflectResolver{})
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
