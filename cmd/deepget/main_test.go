package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/deepget/testhelper"
)

func setupWorkspace(t *testing.T, files map[string]string) {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)

	for name, content := range files {
		assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	code := run(append([]string{"--no-color"}, args...), &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func ordersDocument(t *testing.T) string {
	t.Helper()

	return testhelper.TrimIndent(t, `
		orders:
		  - id: 1
		    lines:
		      - sku: A-1
		        qty: 2
		  - id: 2
		    lines: []
		    notes:
		      gift: wrap
	`)
}

func TestVersionCmd(t *testing.T) {
	setupWorkspace(t, nil)

	code, stdout, _ := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "deepget v0.1.0\n", stdout)
}

func TestHelp(t *testing.T) {
	setupWorkspace(t, nil)

	code, stdout, _ := execute(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "eval")
	assert.Contains(t, stdout, "describe")
}

func TestEvalCmd(t *testing.T) {
	setupWorkspace(t, map[string]string{"orders.yaml": ordersDocument(t)})

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "member and index",
			args:     []string{"eval", "-i", "orders.yaml", "x.orders[0].lines[0].sku"},
			expected: "A-1\n",
		},
		{
			name:     "captured index",
			args:     []string{"eval", "-i", "orders.yaml", "--var", "idx=1", "x.orders[$idx].id"},
			expected: "2\n",
		},
		{
			name:     "captured index from input",
			args:     []string{"eval", "-i", "orders.yaml", "--var", "idx=size(input.orders) - 1", "x.orders[$idx].id"},
			expected: "2\n",
		},
		{
			name:     "keyed access",
			args:     []string{"eval", "-i", "orders.yaml", `o => o.orders[1].notes["gift"]`},
			expected: "wrap\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := execute(t, tt.args...)
			assert.Equal(t, 0, code, stderr)
			assert.Equal(t, tt.expected, stdout)
		})
	}
}

func TestEvalCmd_Formats(t *testing.T) {
	setupWorkspace(t, map[string]string{"orders.json": `{"orders": [{"id": 1, "lines": [{"sku": "A-1", "qty": 2}]}]}`})

	code, stdout, stderr := execute(t, "eval", "-i", "orders.json", "-f", "json", "x.orders[0].lines[0]")
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, `"sku"`)
	assert.Contains(t, stdout, `"A-1"`)

	code, stdout, _ = execute(t, "eval", "-i", "orders.json", "-f", "table", "x.orders[0].lines[0].sku")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Step")
	assert.Contains(t, stdout, "(root)map[string]any")
	assert.Contains(t, stdout, `"A-1"`)

	code, stdout, _ = execute(t, "eval", "-i", "orders.json", "--dump", "x.orders[0].lines[0].sku")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "(string)")
	assert.Contains(t, stdout, `"A-1"`)

	code, _, stderr = execute(t, "eval", "-i", "orders.json", "-f", "csv", "x.orders")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid output format")
}

func TestEvalCmd_ShortCircuit(t *testing.T) {
	setupWorkspace(t, map[string]string{"orders.yaml": ordersDocument(t)})

	code, stdout, stderr := execute(t, "eval", "-i", "orders.yaml", "x.orders[1].lines[0].sku")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "[0]")
	assert.Contains(t, stdout, "index out of range")
	assert.Contains(t, stderr, "(root)map[string]any.orders[1].lines[0] ! ")
	assert.NotContains(t, stderr, "Error:")

	code, stdout, stderr = execute(t, "eval", "-i", "orders.yaml", "x.orders[0].discount.rate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "<absent>")
	assert.Contains(t, stderr, ".discount = <absent>")
}

func TestEvalCmd_Errors(t *testing.T) {
	setupWorkspace(t, map[string]string{"orders.yaml": ordersDocument(t)})

	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{"non-constant index", []string{"eval", "-i", "orders.yaml", "x.orders[x.count]"}, "Only constant value expressions can be used with Index."},
		{"syntax", []string{"eval", "-i", "orders.yaml", "x.orders["}, "invalid expression"},
		{"missing input", []string{"eval", "x.orders"}, "no input document"},
		{"missing file", []string{"eval", "-i", "none.yaml", "x.orders"}, "input file does not exist"},
		{"bad variable", []string{"eval", "-i", "orders.yaml", "--var", "idx", "x.orders[$idx]"}, "name=expression"},
		{"bad expression", []string{"eval", "-i", "orders.yaml", "--var", "idx=1 +", "x.orders[$idx]"}, "compile failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.message)
		})
	}
}

func TestEvalCmd_UsesConfig(t *testing.T) {
	setupWorkspace(t, map[string]string{
		"orders.yaml": ordersDocument(t),
		"deepget.yaml": testhelper.TrimIndent(t, `
			input: orders.yaml
			vars:
			  last: "size(input.orders) - 1"
			output:
			  format: json
		`),
	})

	code, stdout, stderr := execute(t, "eval", "x.orders[$last].id")
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "2")
}

func TestCheckCmd(t *testing.T) {
	setupWorkspace(t, map[string]string{
		"deepget.yaml": testhelper.TrimIndent(t, `
			vars:
			  idx: "1"
			paths:
			  - x.orders[$idx].id
		`),
	})

	code, stdout, stderr := execute(t, "check", "x.a.b", "x.b[x.c]", `x.m("k", x.n)`, "x.orders[$idx].id")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "✓ x.orders[$idx].id")
	assert.Contains(t, stdout, "✓ x.a.b")
	assert.Contains(t, stdout, "✗ x.b[x.c]")
	assert.Contains(t, stdout, `✗ x.m("k", x.n)`)
	assert.Contains(t, stderr, "2 errors occurred")
	assert.Contains(t, stderr, "Only constant value expressions can be used with Index.")
	assert.Contains(t, stderr, "MethodCall can only have constant arguments.")

	code, _, _ = execute(t, "check", "x.a")
	assert.Equal(t, 0, code)
}

func TestCheckCmd_NoPaths(t *testing.T) {
	setupWorkspace(t, nil)

	code, _, stderr := execute(t, "check")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no paths to check")
}

func TestDescribeCmd(t *testing.T) {
	setupWorkspace(t, nil)

	code, stdout, stderr := execute(t, "describe", "--var", "idx=2", `x.orders[$idx].lines["k"]`)
	assert.Equal(t, 0, code, stderr)
	assert.Equal(t, "(root).orders[2].lines[\"k\"]\n", stdout)

	code, _, stderr = execute(t, "describe", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not a chain")
}

func TestInvalidConfig(t *testing.T) {
	setupWorkspace(t, map[string]string{"deepget.yaml": "output:\n  format: xml\n"})

	code, _, stderr := execute(t, "version")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "failed to load config")
}

func TestInvalidLogLevel(t *testing.T) {
	setupWorkspace(t, nil)

	code, _, stderr := execute(t, "--log-level", "loud", "version")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "invalid log level")
}
