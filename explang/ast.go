package explang

import (
	"reflect"
)

// Position represents the start offset of a node within the original expression.
// Offset is the rune index (0-based), Line/Column are 1-based for error reporting.
// Hand-built nodes carry the zero Position.
type Position struct {
	Offset int
	Line   int
	Column int
	Length int
}

// NodeKind indicates what kind of path node is described.
type NodeKind int

const (
	NodeRoot NodeKind = iota
	NodeMember
	NodeIndex
	NodeCall
	NodeLiteral
)

func (k NodeKind) String() string {
	switch k {
	case NodeRoot:
		return "root"
	case NodeMember:
		return "member"
	case NodeIndex:
		return "index"
	case NodeCall:
		return "call"
	case NodeLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Node is one element of an access path. Implementations are immutable once built.
type Node interface {
	Kind() NodeKind
	Pos() Position
	String() string
}

// Step is a node that reads from a predecessor node.
type Step interface {
	Node
	Predecessor() Node
}

// Root is the starting value of a path.
type Root struct {
	// Param is the name the root renders as. Empty renders as "x".
	Param string
	// Type is the declared static type of the starting value, used only for naming.
	Type reflect.Type
	Position
}

// Member reads a field, property-like method or bag entry from Target.
type Member struct {
	Target Node
	Name   string
	Position
}

// Index reads an element of an ordered container.
type Index struct {
	Target Node
	Arg    Node
	Position
}

// Call invokes Method on Target with constant arguments. When Indexer is set
// the call is a keyed lookup (m["k"]) and renders as an index.
type Call struct {
	Target  Node
	Method  string
	Args    []Node
	Indexer bool
	Position
}

// Literal is a fixed value embedded directly in the path.
type Literal struct {
	Value any
	Position
}

func (*Root) Kind() NodeKind    { return NodeRoot }
func (*Member) Kind() NodeKind  { return NodeMember }
func (*Index) Kind() NodeKind   { return NodeIndex }
func (*Call) Kind() NodeKind    { return NodeCall }
func (*Literal) Kind() NodeKind { return NodeLiteral }

func (n *Root) Pos() Position    { return n.Position }
func (n *Member) Pos() Position  { return n.Position }
func (n *Index) Pos() Position   { return n.Position }
func (n *Call) Pos() Position    { return n.Position }
func (n *Literal) Pos() Position { return n.Position }

func (n *Member) Predecessor() Node { return n.Target }
func (n *Index) Predecessor() Node  { return n.Target }
func (n *Call) Predecessor() Node   { return n.Target }

// ParamName returns the name the root renders as.
func (n *Root) ParamName() string {
	if n.Param == "" {
		return "x"
	}

	return n.Param
}

// Path is a linear access chain from Root to Body.
type Path struct {
	Root *Root
	Body Node
}

// NewPath creates a path rooted at a value of type rootType. Steps are
// appended with the builder methods.
func NewPath(rootType reflect.Type) *Builder {
	root := &Root{Type: rootType}
	return &Builder{path: &Path{Root: root, Body: root}}
}

// PathOf creates a builder for a root of T's static type.
func PathOf[T any]() *Builder {
	return NewPath(reflect.TypeOf((*T)(nil)).Elem())
}

// Chain returns the nodes of the path from Root to the leaf, in walk order.
// ok is false when a predecessor edge does not lead back to the path's Root.
func (p *Path) Chain() (nodes []Node, ok bool) {
	var current Node = p.Body
	for current != nil {
		nodes = append(nodes, current)

		step, isStep := current.(Step)
		if !isStep {
			break
		}

		current = step.Predecessor()
	}

	if len(nodes) == 0 || nodes[len(nodes)-1] != Node(p.Root) {
		return nil, false
	}

	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	return nodes, true
}

// Depth returns the number of steps after the root.
func (p *Path) Depth() int {
	nodes, ok := p.Chain()
	if !ok {
		return 0
	}

	return len(nodes) - 1
}

// Builder assembles a Path by hand. Each method appends one step.
type Builder struct {
	path *Path
}

// Member appends a member access.
func (b *Builder) Member(name string) *Builder {
	b.path.Body = &Member{Target: b.path.Body, Name: name}
	return b
}

// Index appends an index access whose argument is arg.
func (b *Builder) Index(arg Node) *Builder {
	b.path.Body = &Index{Target: b.path.Body, Arg: arg}
	return b
}

// At appends an index access with a constant argument.
func (b *Builder) At(index int) *Builder {
	return b.Index(&Literal{Value: index})
}

// Key appends a keyed lookup with a constant key.
func (b *Builder) Key(key any) *Builder {
	b.path.Body = &Call{Target: b.path.Body, Method: "Get", Args: []Node{&Literal{Value: key}}, Indexer: true}
	return b
}

// Call appends a method call.
func (b *Builder) Call(method string, args ...Node) *Builder {
	b.path.Body = &Call{Target: b.path.Body, Method: method, Args: args}
	return b
}

// Param renames the root parameter.
func (b *Builder) Param(name string) *Builder {
	b.path.Root.Param = name
	return b
}

// Build returns the assembled path.
func (b *Builder) Build() *Path {
	return b.path
}

// Node returns the current leaf for use as an argument of another step.
func (b *Builder) Node() Node {
	return b.path.Body
}

// Const creates a literal argument.
func Const(value any) *Literal {
	return &Literal{Value: value}
}

// Captured creates a read of a captured variable: a member access on a
// literal holding the capture environment (a struct, pointer or map).
func Captured(env any, name string) *Member {
	return &Member{Target: &Literal{Value: env}, Name: name}
}
