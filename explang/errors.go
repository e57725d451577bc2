package explang

import "errors"

// ErrInvalidExpression indicates that an expression string could not be parsed.
var ErrInvalidExpression = errors.New("explang: invalid expression")

// Parse fault kinds. A *ParseError unwraps to one of these.
var (
	// ErrNonConstantIndex indicates an index argument that is not a literal.
	ErrNonConstantIndex = errors.New("explang: non-constant index argument")
	// ErrNonConstantArgument indicates a call argument that is not a literal.
	ErrNonConstantArgument = errors.New("explang: non-constant call argument")
	// ErrUnrecognizedNode indicates a node implementation the engine does not know.
	ErrUnrecognizedNode = errors.New("explang: unrecognized node")
	// ErrPreviouslyInvalid indicates a path shape that failed validation before.
	ErrPreviouslyInvalid = errors.New("explang: previously deemed invalid")
	// ErrCaptureRead indicates a captured variable could not be read.
	ErrCaptureRead = errors.New("explang: cannot read captured variable")
	// ErrBrokenChain indicates a path whose predecessor edges do not end at its root.
	ErrBrokenChain = errors.New("explang: broken chain")
)

// Messages carried by ParseError. Callers may match on these texts.
const (
	MessageNonConstantIndex    = "Only constant value expressions can be used with Index."
	MessageNonConstantArgument = "MethodCall can only have constant arguments."
	MessageUnrecognizedNode    = "Can't recognize type of member expression."
	MessagePreviouslyInvalid   = "Expression has been previously deemed invalid."
	MessageCaptureRead         = "Can't read captured variable."
	MessageBrokenChain         = "Expression is not a linear chain from its root."
)

// ParseError reports a path shape that cannot be evaluated.
type ParseError struct {
	Kind    error
	Message string
	// Expr is the rendered text of the offending sub-expression.
	Expr string
	// Err is an optional underlying cause.
	Err error
}

// NewParseError creates a ParseError for the offending node.
func NewParseError(kind error, message string, node Node) *ParseError {
	expr := "null"
	if node != nil {
		expr = node.String()
	}

	return &ParseError{Kind: kind, Message: message, Expr: expr}
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Message + " (" + e.Expr + "): " + e.Err.Error()
	}

	return e.Message + " (" + e.Expr + ")"
}

// Unwrap returns the fault kind and, when present, the underlying cause.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}

	return []error{e.Kind}
}
