package explang

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	captures := map[string]any{"idx": 1, "key": "color"}

	tests := []struct {
		name      string
		input     string
		wantText  string
		wantDepth int
	}{
		{
			name:      "member chain",
			input:     "x.Prop.Field",
			wantText:  "x => x.Prop.Field",
			wantDepth: 2,
		},
		{
			name:      "index and key",
			input:     `order.Items[0].Tags["color"]`,
			wantText:  `order => order.Items[0].Tags["color"]`,
			wantDepth: 4,
		},
		{
			name:      "captured index",
			input:     "x.Items[$idx]",
			wantText:  "x => x.Items[value(map[string]interface {}).idx]",
			wantDepth: 2,
		},
		{
			name:      "call with literals",
			input:     `x.Format("%d", 2, 1.5, true, null)`,
			wantText:  `x => x.Format("%d", 2, 1.5, true, null)`,
			wantDepth: 1,
		},
		{
			name:      "whitespace is not significant",
			input:     ` x . Items [ 2 ] . Name `,
			wantText:  "x => x.Items[2].Name",
			wantDepth: 3,
		},
		{
			name:      "root only",
			input:     "x",
			wantText:  "x => x",
			wantDepth: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := Parse(tt.input, &ParseOptions{Captures: captures})
			require.NoError(t, err)

			assert.Equal(t, tt.wantText, path.String())
			assert.Equal(t, tt.wantDepth, path.Depth())
		})
	}
}

func TestParse_NodeKinds(t *testing.T) {
	captures := map[string]any{"idx": 1, "key": "color"}

	path, err := Parse(`x.Items[$idx].Tags[$key].Find(-3, 2.25)`, &ParseOptions{Captures: captures})
	require.NoError(t, err)

	nodes, ok := path.Chain()
	require.True(t, ok)
	require.Len(t, nodes, 6)

	kinds := make([]NodeKind, len(nodes))
	for i, n := range nodes {
		kinds[i] = n.Kind()
	}

	assert.Equal(t, []NodeKind{NodeRoot, NodeMember, NodeIndex, NodeMember, NodeCall, NodeCall}, kinds)

	keyed := nodes[4].(*Call)
	assert.True(t, keyed.Indexer, "string capture selects by key")

	find := nodes[5].(*Call)
	assert.False(t, find.Indexer)
	assert.Equal(t, "Find", find.Method)
	require.Len(t, find.Args, 2)
	assert.Equal(t, -3, find.Args[0].(*Literal).Value)
	assert.True(t, decimal.RequireFromString("2.25").Equal(find.Args[1].(*Literal).Value.(decimal.Decimal)))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  *ParseOptions
	}{
		{name: "empty", input: ""},
		{name: "invalid start", input: "1foo"},
		{name: "dangling dot", input: "x."},
		{name: "missing close bracket", input: "x.Items[0"},
		{name: "missing close paren", input: "x.Find(1"},
		{name: "two bracket arguments", input: "x.Items[0, 1]"},
		{name: "unknown identifier", input: "x.Items[y]"},
		{name: "capture without environment", input: "x.Items[$i]"},
		{name: "unterminated string", input: `x.Tags["a]`},
		{name: "trailing garbage", input: "x.Items)"},
		{name: "arrow body with other parameter", input: "x => y.Items"},
		{name: "broken arrow", input: "x = x.Items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, tt.opts)
			assert.ErrorIs(t, err, ErrInvalidExpression)
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	captures := map[string]any{"i": 2, "k": "sku"}

	for _, input := range []string{
		"x.Prop.Field",
		`order.Lines[$i][$k].Price("EUR", 2)`,
		"x.Items[-1].Ratio(0.25, null, false)",
		"x",
	} {
		t.Run(input, func(t *testing.T) {
			path, err := Parse(input, &ParseOptions{Captures: captures})
			require.NoError(t, err)

			substituted, err := SubstituteCaptures(path, &mapReader{})
			require.NoError(t, err)

			text := substituted.String()

			again, err := Parse(text, nil)
			require.NoError(t, err)
			assert.Equal(t, text, again.String())
		})
	}
}

func TestParse_WithBaseLineColumn(t *testing.T) {
	path, err := Parse("a.b", &ParseOptions{Line: 3, Column: 5})
	require.NoError(t, err)

	assert.Equal(t, Position{Offset: 0, Line: 3, Column: 5, Length: 1}, path.Root.Pos())
	assert.Equal(t, Position{Offset: 1, Line: 3, Column: 6, Length: 2}, path.Body.Pos())
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("x..y", nil) })
}
