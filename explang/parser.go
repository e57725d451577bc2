package explang

import (
	"fmt"
	"reflect"
	"strconv"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseOptions configures Parse.
type ParseOptions struct {
	// RootType is the declared static type of the root value, used for naming.
	RootType reflect.Type
	// Captures is the environment $name references read from: a map with
	// string keys, a struct or a pointer to a struct.
	Captures any
	// Line/Column give the 1-based location of the first rune of expr within
	// a larger document, so Position metadata remains accurate.
	Line   int
	Column int
}

// Parse builds a Path from its textual form:
//
//	x.Orders[0].Lines[$idx].Attributes["color"].Format("%s", 2)
//
// The first identifier names the root. Brackets holding a string (or a
// capture currently holding a string) become keyed lookups, anything else an
// index. For a capture this is only the initial kind: SubstituteCaptures
// decides again from the value current at each evaluation. $name reads a
// captured variable from opts.Captures; it is frozen into a literal by
// SubstituteCaptures at evaluation time.
func Parse(expr string, opts *ParseOptions) (*Path, error) {
	if opts == nil {
		opts = &ParseOptions{}
	}

	p := newParser(expr, opts)
	if err := p.parse(); err != nil {
		return nil, err
	}

	return p.path, nil
}

// MustParse is like Parse but panics on error. Intended for package-level path variables.
func MustParse(expr string, opts *ParseOptions) *Path {
	path, err := Parse(expr, opts)
	if err != nil {
		panic(err)
	}

	return path
}

type parser struct {
	src        []rune
	pos        int
	path       *Path
	captures   any
	baseLine   int
	baseColumn int
}

func newParser(expr string, opts *ParseOptions) *parser {
	line, column := opts.Line, opts.Column
	if line < 1 {
		line = 1
	}

	if column < 1 {
		column = 1
	}

	return &parser{
		src:        []rune(expr),
		path:       &Path{Root: &Root{Type: opts.RootType}},
		captures:   opts.Captures,
		baseLine:   line,
		baseColumn: column,
	}
}

func (p *parser) parse() error {
	p.skipWhitespace()

	ident, start, end, ok := p.readIdentifier()
	if !ok {
		return p.unexpected("identifier")
	}

	p.path.Root.Param = ident
	p.path.Root.Position = p.makePosition(start, end)

	// Canonical form: "x => x.Prop"
	p.skipWhitespace()

	if p.match('=') {
		if !p.match('>') {
			return p.unexpected("'=>'")
		}

		p.skipWhitespace()

		bodyStart := p.pos

		name, _, _, ok := p.readIdentifier()
		if !ok || name != ident {
			p.pos = bodyStart
			return fmt.Errorf("%w: body must start with parameter '%s' at position %d", ErrInvalidExpression, ident, bodyStart+1)
		}
	}

	body, err := p.parseSteps(p.path.Root)
	if err != nil {
		return err
	}

	p.skipWhitespace()

	if !p.eof() {
		return fmt.Errorf("%w: unexpected character '%c' at position %d", ErrInvalidExpression, p.peek(), p.pos+1)
	}

	p.path.Body = body

	return nil
}

// parseSteps consumes member, call and bracket steps following current.
func (p *parser) parseSteps(current Node) (Node, error) {
	for {
		p.skipWhitespace()

		switch p.peek() {
		case '.':
			next, err := p.parseMemberOrCall(current)
			if err != nil {
				return nil, err
			}

			current = next
		case '[':
			next, err := p.parseBracket(current)
			if err != nil {
				return nil, err
			}

			current = next
		default:
			return current, nil
		}
	}
}

func (p *parser) parseMemberOrCall(target Node) (Node, error) {
	dotStart := p.pos
	p.pos++
	p.skipWhitespace()

	ident, _, end, ok := p.readIdentifier()
	if !ok {
		return nil, fmt.Errorf("%w: expected identifier after '.' at position %d", ErrInvalidExpression, p.pos+1)
	}

	save := p.pos
	p.skipWhitespace()

	if !p.match('(') {
		p.pos = save
		return &Member{Target: target, Name: ident, Position: p.makePosition(dotStart, end)}, nil
	}

	args, err := p.parseArguments(')')
	if err != nil {
		return nil, err
	}

	return &Call{Target: target, Method: ident, Args: args, Position: p.makePosition(dotStart, p.pos)}, nil
}

func (p *parser) parseBracket(target Node) (Node, error) {
	bracketStart := p.pos
	p.pos++

	args, err := p.parseArguments(']')
	if err != nil {
		return nil, err
	}

	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one index argument at position %d", ErrInvalidExpression, bracketStart+1)
	}

	pos := p.makePosition(bracketStart, p.pos)

	if p.isKey(args[0]) {
		return &Call{Target: target, Method: "Get", Args: args, Indexer: true, Position: pos}, nil
	}

	return &Index{Target: target, Arg: args[0], Position: pos}, nil
}

// parseArguments reads a comma separated operand list up to and including closer.
func (p *parser) parseArguments(closer rune) ([]Node, error) {
	var args []Node

	p.skipWhitespace()

	if p.match(closer) {
		return args, nil
	}

	for {
		arg, err := p.parseOperand()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		p.skipWhitespace()

		if p.match(closer) {
			return args, nil
		}

		if !p.match(',') {
			return nil, fmt.Errorf("%w: expected ',' or '%c' at position %d", ErrInvalidExpression, closer, p.pos+1)
		}

		p.skipWhitespace()
	}
}

func (p *parser) parseOperand() (Node, error) {
	p.skipWhitespace()

	start := p.pos

	switch r := p.peek(); {
	case r == '"':
		return p.readString()
	case r == '-' || unicode.IsDigit(r):
		return p.readNumber()
	case r == '$':
		p.pos++

		ident, _, end, ok := p.readIdentifier()
		if !ok {
			return nil, fmt.Errorf("%w: expected capture name after '$' at position %d", ErrInvalidExpression, p.pos+1)
		}

		if p.captures == nil {
			return nil, fmt.Errorf("%w: capture $%s used without a capture environment", ErrInvalidExpression, ident)
		}

		return &Member{Target: &Literal{Value: p.captures}, Name: ident, Position: p.makePosition(start, end)}, nil
	case isIdentStart(r):
		ident, _, end, _ := p.readIdentifier()

		switch ident {
		case "true", "false":
			return &Literal{Value: ident == "true", Position: p.makePosition(start, end)}, nil
		case "null", "nil":
			return &Literal{Value: nil, Position: p.makePosition(start, end)}, nil
		}

		if ident != p.path.Root.ParamName() {
			return nil, fmt.Errorf("%w: unknown identifier %q at position %d (use $%s for captured variables)", ErrInvalidExpression, ident, start+1, ident)
		}

		// A read of the root itself; accepted here and rejected by CheckConstantArguments.
		return p.parseSteps(p.path.Root)
	default:
		return nil, p.unexpected("argument")
	}
}

func (p *parser) readString() (Node, error) {
	start := p.pos
	p.pos++

	for !p.eof() && p.peek() != '"' {
		if p.peek() == '\\' {
			p.pos++
		}

		p.pos++
	}

	if !p.match('"') {
		return nil, fmt.Errorf("%w: unterminated string starting at position %d", ErrInvalidExpression, start+1)
	}

	value, err := strconv.Unquote(string(p.src[start:p.pos]))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid string literal at position %d: %w", ErrInvalidExpression, start+1, err)
	}

	return &Literal{Value: value, Position: p.makePosition(start, p.pos)}, nil
}

func (p *parser) readNumber() (Node, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}

	digits := p.pos
	fractional := false

	for unicode.IsDigit(p.peek()) || p.peek() == '.' || p.peek() == 'e' || p.peek() == 'E' {
		if !unicode.IsDigit(p.peek()) {
			fractional = true
		}

		p.pos++
	}

	if p.pos == digits {
		return nil, fmt.Errorf("%w: expected number at position %d", ErrInvalidExpression, start+1)
	}

	text := string(p.src[start:p.pos])
	pos := p.makePosition(start, p.pos)

	if fractional {
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number %q at position %d", ErrInvalidExpression, text, start+1)
		}

		return &Literal{Value: d, Position: pos}, nil
	}

	v, err := strconv.Atoi(text)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid integer %q at position %d", ErrInvalidExpression, text, start+1)
	}

	return &Literal{Value: v, Position: pos}, nil
}

// isKey reports whether a bracket argument selects by key rather than by position.
func (p *parser) isKey(arg Node) bool {
	switch a := arg.(type) {
	case *Literal:
		return isStringValue(a.Value)
	case *Member:
		env, ok := a.Target.(*Literal)
		if !ok {
			return false
		}

		return isStringValue(peekCapture(env.Value, a.Name))
	default:
		return false
	}
}

func isStringValue(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.String
}

// peekCapture looks at the current value of a capture without resolving
// through a Resolver; it only decides the bracket kind.
func peekCapture(env any, name string) any {
	rv := reflect.ValueOf(env)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}

		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil
		}

		return v.Interface()
	case reflect.Struct:
		f := rv.FieldByName(name)
		if !f.IsValid() || !f.CanInterface() {
			return nil
		}

		return f.Interface()
	default:
		return nil
	}
}

func (p *parser) unexpected(what string) error {
	if p.eof() {
		return fmt.Errorf("%w: expected %s at position %d", ErrInvalidExpression, what, p.pos+1)
	}

	return fmt.Errorf("%w: unexpected character '%c' at position %d", ErrInvalidExpression, p.peek(), p.pos+1)
}

func (p *parser) skipWhitespace() {
	for unicode.IsSpace(p.peek()) {
		p.pos++
	}
}

func (p *parser) match(r rune) bool {
	if p.peek() != r {
		return false
	}

	p.pos++

	return true
}

func (p *parser) readIdentifier() (string, int, int, bool) {
	if !isIdentStart(p.peek()) {
		return "", 0, 0, false
	}

	start := p.pos

	p.pos++
	for isIdentPart(p.peek()) {
		p.pos++
	}

	return string(p.src[start:p.pos]), start, p.pos, true
}

func (p *parser) peek() rune {
	if p.pos >= len(p.src) {
		return 0
	}

	return p.src[p.pos]
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) makePosition(start, end int) Position {
	pos := p.positionAt(start)
	pos.Length = end - start

	return pos
}

func (p *parser) positionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}

	if offset > len(p.src) {
		offset = len(p.src)
	}

	line := p.baseLine

	col := p.baseColumn
	for i := range offset {
		r := p.src[i]
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	return Position{Offset: offset, Line: line, Column: col}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
