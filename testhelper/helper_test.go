package testhelper

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestTrimIndent(t *testing.T) {
	got := TrimIndent(t, `
		vars:
		  idx: "1"
		paths:
			- x.A
	`)

	assert.Equal(t, "vars:\n  idx: \"1\"\npaths:\n  - x.A\n", got)
}

func TestTrimIndent_SingleLine(t *testing.T) {
	assert.Equal(t, "x.A", TrimIndent(t, "x.A"))
}
