package explang

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConstantArguments_SuccessCases(t *testing.T) {
	cases := []string{
		"x.Prop.Field",
		"x.Items[2].Name",
		`x.Tags["color"]`,
		`x.Find("a", 1, true)`,
		"x.Items[0].Children[1].Find()",
	}

	for _, expr := range cases {
		path, err := Parse(expr, nil)
		if !assert.NoError(t, err, expr) {
			continue
		}

		assert.NoError(t, CheckConstantArguments(path), expr)
	}
}

func TestCheckConstantArguments_Errors(t *testing.T) {
	captures := map[string]any{"idx": 1}

	tests := []struct {
		name        string
		input       string
		wantKind    error
		wantMessage string
		wantExpr    string
	}{
		{
			name:        "capture not substituted",
			input:       "x.Items[$idx]",
			wantKind:    ErrNonConstantIndex,
			wantMessage: "Only constant value expressions can be used with Index.",
			wantExpr:    "x.Items[value(map[string]interface {}).idx]",
		},
		{
			name:        "index depends on root",
			input:       "x.Items[x.Count]",
			wantKind:    ErrNonConstantIndex,
			wantMessage: "Only constant value expressions can be used with Index.",
			wantExpr:    "x.Items[x.Count]",
		},
		{
			name:        "call argument depends on root",
			input:       `x.Find("a", x.Name)`,
			wantKind:    ErrNonConstantArgument,
			wantMessage: "MethodCall can only have constant arguments.",
			wantExpr:    `x.Find("a", x.Name)`,
		},
		{
			name:        "nested offending step",
			input:       "x.Items[0].Find(x).Name",
			wantKind:    ErrNonConstantArgument,
			wantMessage: "MethodCall can only have constant arguments.",
			wantExpr:    "x.Items[0].Find(x)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := Parse(tt.input, &ParseOptions{Captures: captures})
			require.NoError(t, err)

			err = CheckConstantArguments(path)
			require.ErrorIs(t, err, tt.wantKind)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.wantMessage, perr.Message)
			assert.Equal(t, tt.wantExpr, perr.Expr)
		})
	}
}

type foreignNode struct {
	target Node
}

func (n *foreignNode) Kind() NodeKind    { return NodeKind(99) }
func (n *foreignNode) Pos() Position     { return Position{} }
func (n *foreignNode) String() string    { return n.target.String() + ".?" }
func (n *foreignNode) Predecessor() Node { return n.target }

func TestCheckConstantArguments_UnrecognizedNode(t *testing.T) {
	root := &Root{}
	path := &Path{Root: root, Body: &Member{Target: &foreignNode{target: root}, Name: "A"}}

	err := CheckConstantArguments(path)
	require.ErrorIs(t, err, ErrUnrecognizedNode)
	assert.Contains(t, err.Error(), "Can't recognize type of member expression.")
	assert.Contains(t, err.Error(), "x.?")
}

func TestCheckConstantArguments_BrokenChain(t *testing.T) {
	path := &Path{Root: &Root{}, Body: &Member{Target: &Root{Param: "other"}, Name: "A"}}

	assert.ErrorIs(t, CheckConstantArguments(path), ErrBrokenChain)
	assert.ErrorIs(t, CheckConstantArguments(nil), ErrBrokenChain)
}
