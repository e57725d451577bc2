package explang

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// String renders the path in canonical form, e.g. `x => x.Items[1].Name`.
// The canonical text of a substituted path is used as the validity cache key.
func (p *Path) String() string {
	if p == nil || p.Root == nil {
		return "null"
	}

	return p.Root.ParamName() + " => " + render(p.Body)
}

// BodyString renders only the path body, e.g. `x.Items[1].Name`.
func (p *Path) BodyString() string {
	return render(p.Body)
}

func (n *Root) String() string    { return n.ParamName() }
func (n *Member) String() string  { return render(n) }
func (n *Index) String() string   { return render(n) }
func (n *Call) String() string    { return render(n) }
func (n *Literal) String() string { return FormatLiteral(n.Value) }

func render(n Node) string {
	var sb strings.Builder
	writeNode(&sb, n)

	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	switch node := n.(type) {
	case nil:
		sb.WriteString("null")
	case *Root:
		sb.WriteString(node.ParamName())
	case *Member:
		writeNode(sb, node.Target)
		sb.WriteByte('.')
		sb.WriteString(node.Name)
	case *Index:
		writeNode(sb, node.Target)
		sb.WriteByte('[')
		writeNode(sb, node.Arg)
		sb.WriteByte(']')
	case *Call:
		writeNode(sb, node.Target)

		if node.Indexer {
			sb.WriteByte('[')
			writeArgs(sb, node.Args)
			sb.WriteByte(']')

			return
		}

		sb.WriteByte('.')
		sb.WriteString(node.Method)
		sb.WriteByte('(')
		writeArgs(sb, node.Args)
		sb.WriteByte(')')
	case *Literal:
		sb.WriteString(FormatLiteral(node.Value))
	default:
		sb.WriteString(n.String())
	}
}

func writeArgs(sb *strings.Builder, args []Node) {
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(", ")
		}

		writeNode(sb, arg)
	}
}

// FormatLiteral renders a constant the way it appears in canonical path text.
// Strings are quoted, numbers, runes-as-numbers and bools are not, nil is "null"
// and any other value renders as value(<Type>).
func FormatLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(val)
	case bool:
		return strconv.FormatBool(val)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case decimal.Decimal:
		return val.String()
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "null"
		}

		return val.String()
	default:
		return formatByKind(reflect.ValueOf(v))
	}
}

func formatByKind(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.String:
		return strconv.Quote(rv.String())
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	default:
		return "value(" + rv.Type().String() + ")"
	}
}
