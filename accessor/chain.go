package accessor

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/shibukawa/deepget/explang"
)

// RootPrefix starts the display name of the root part and every chain description.
const RootPrefix = "(root)"

// ChainPart records the outcome of one walked node.
type ChainPart struct {
	// Name is the display label: (root)<Type>, Member, [literal] or Method(args).
	Name string
	// Value is the resolved value; nil means the chain stops here.
	Value any
	// Fault is set when resolving the step failed, as opposed to the value
	// being naturally absent.
	Fault error
	// Node is the path node this part was resolved from.
	Node explang.Node
}

// Absent reports whether the chain stops at this part.
func (p ChainPart) Absent() bool {
	return p.Value == nil
}

// PartName returns the display name of a non-root node.
func PartName(n explang.Node) string {
	switch node := n.(type) {
	case *explang.Root:
		return RootPrefix + TypeName(node.Type)
	case *explang.Member:
		return node.Name
	case *explang.Index:
		return "[" + node.Arg.String() + "]"
	case *explang.Call:
		args := make([]string, len(node.Args))
		for i, arg := range node.Args {
			args[i] = arg.String()
		}

		if node.Indexer {
			return "[" + strings.Join(args, ", ") + "]"
		}

		return node.Method + "(" + strings.Join(args, ", ") + ")"
	default:
		return n.String()
	}
}

var optionalPkgPath = reflect.TypeOf(Optional[int]{}).PkgPath()

// TypeName renders t for display: generic instantiations as Outer<A,B>
// without package qualifiers, Optional[T] and pointers to scalars as T?,
// pointers to anything else as their element.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "any"
	}

	switch t.Kind() {
	case reflect.Pointer:
		if isScalarKind(t.Elem().Kind()) {
			return TypeName(t.Elem()) + "?"
		}

		return TypeName(t.Elem())
	case reflect.Slice:
		if t.Name() == "" {
			return "[]" + TypeName(t.Elem())
		}
	case reflect.Array:
		if t.Name() == "" {
			return fmt.Sprintf("[%d]%s", t.Len(), TypeName(t.Elem()))
		}
	case reflect.Map:
		if t.Name() == "" {
			return "map[" + TypeName(t.Key()) + "]" + TypeName(t.Elem())
		}
	case reflect.Interface:
		if t.Name() == "" && t.NumMethod() == 0 {
			return "any"
		}
	}

	if t.Name() == "" {
		return t.String()
	}

	if t.PkgPath() != "" {
		return prettyTypeString(t.PkgPath() + "." + t.Name())
	}

	return prettyTypeString(t.Name())
}

// prettyTypeString rewrites a reflect type string such as
// "Box[*example.com/pkg.Item[int],string]" into "Box<Item<int>,string>".
func prettyTypeString(s string) string {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "*"):
		inner := s[1:]
		if scalarNames[inner] {
			return inner + "?"
		}

		return prettyTypeString(inner)
	case strings.HasPrefix(s, "[]"):
		return "[]" + prettyTypeString(s[2:])
	case strings.HasPrefix(s, "map["):
		end := matchingBracket(s, len("map"))
		if end < 0 {
			return s
		}

		return "map[" + prettyTypeString(s[len("map["):end]) + "]" + prettyTypeString(s[end+1:])
	}

	open := strings.IndexByte(s, '[')
	if open < 0 {
		return stripQualifier(s)
	}

	end := matchingBracket(s, open)
	if end < 0 {
		return stripQualifier(s)
	}

	name := stripQualifier(s[:open])
	params := splitTopLevel(s[open+1 : end])

	if name == "Optional" && strings.HasSuffix(s[:open], optionalPkgPath+".Optional") && len(params) == 1 {
		return prettyTypeString(params[0]) + "?"
	}

	rendered := make([]string, len(params))
	for i, p := range params {
		rendered[i] = prettyTypeString(p)
	}

	return name + "<" + strings.Join(rendered, ",") + ">"
}

func stripQualifier(s string) string {
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}

	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}

	return s
}

// matchingBracket returns the index of the ']' closing the '[' at open.
func matchingBracket(s string, open int) int {
	depth := 0

	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, s[start:])
}

var scalarNames = map[string]bool{
	"bool": true, "string": true, "byte": true, "rune": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
}

func isScalarKind(k reflect.Kind) bool {
	return (k >= reflect.Bool && k <= reflect.Complex128) || k == reflect.String
}

// Describe renders a path as a chain description, e.g. "(root).Prop.Field[2]".
// It fails with ErrNotAChain for a path without steps.
func Describe(p *explang.Path) (string, error) {
	if p == nil || p.Root == nil {
		return "", fmt.Errorf("%w: null", ErrNotAChain)
	}

	body := p.BodyString()
	param := p.Root.ParamName()

	if len(body) <= len(param) || !strings.HasPrefix(body, param) {
		return "", fmt.Errorf("%w: %s", ErrNotAChain, p)
	}

	return RootPrefix + body[len(param):], nil
}

// FormatChain renders a trace on one line, e.g.
// "(root)Order.Lines[3] = <absent>" or "(root)Order.Find("a") ! boom".
func FormatChain(parts []ChainPart) string {
	var sb strings.Builder

	for i, part := range parts {
		if i > 0 && !strings.HasPrefix(part.Name, "[") {
			sb.WriteByte('.')
		}

		sb.WriteString(part.Name)
	}

	if len(parts) == 0 {
		return ""
	}

	last := parts[len(parts)-1]

	switch {
	case last.Fault != nil:
		sb.WriteString(" ! ")
		sb.WriteString(last.Fault.Error())
	case last.Absent():
		sb.WriteString(" = <absent>")
	}

	return sb.String()
}
