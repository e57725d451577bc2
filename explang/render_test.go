package explang

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type direction int

func TestFormatLiteral(t *testing.T) {
	var nilDuration *time.Duration

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "null"},
		{"string is quoted", "a\"b", `"a\"b"`},
		{"int", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"rune renders as number", 'a', "97"},
		{"uint8", uint8(3), "3"},
		{"float", 2.5, "2.5"},
		{"bool", true, "true"},
		{"decimal", decimal.RequireFromString("1.50"), "1.5"},
		{"named int", direction(2), "2"},
		{"stringer", 2 * time.Second, "2s"},
		{"nil stringer pointer", nilDuration, "null"},
		{"struct", struct{ A int }{1}, "value(struct { A int })"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLiteral(tt.value))
		})
	}
}

func TestBuilder_Render(t *testing.T) {
	path := NewPath(nil).
		Param("order").
		Member("Lines").
		At(3).
		Key("sku").
		Call("Price", Const("EUR"), Const(2)).
		Build()

	assert.Equal(t, `order => order.Lines[3]["sku"].Price("EUR", 2)`, path.String())
	assert.Equal(t, `order.Lines[3]["sku"].Price("EUR", 2)`, path.BodyString())
	assert.Equal(t, 4, path.Depth())
}
