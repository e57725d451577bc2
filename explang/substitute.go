package explang

// MemberReader reads a named member of a target value. accessor.Resolver
// satisfies it.
type MemberReader interface {
	Member(target any, name string) (any, error)
}

// SubstituteCaptures returns a copy of p in which every read of a captured
// variable (a Member whose target is a Literal) is replaced by a Literal
// holding the variable's current value. p itself is left unmodified.
//
// A bracket step whose argument is a capture is re-classified from the
// value read here: a string selects by key, anything else by position.
//
// It must run on every evaluation: captured values change between calls
// even when the path shape does not.
func SubstituteCaptures(p *Path, reader MemberReader) (*Path, error) {
	if p == nil {
		return nil, NewParseError(ErrBrokenChain, MessageBrokenChain, nil)
	}

	captured := map[*Literal]bool{}

	body, err := Rewrite(p.Body, func(n Node) (Node, error) {
		switch node := n.(type) {
		case *Member:
			env, ok := node.Target.(*Literal)
			if !ok {
				return n, nil
			}

			value, err := reader.Member(env.Value, node.Name)
			if err != nil {
				perr := NewParseError(ErrCaptureRead, MessageCaptureRead, node)
				perr.Err = err

				return nil, perr
			}

			lit := &Literal{Value: value, Position: node.Position}
			captured[lit] = true

			return lit, nil
		case *Index:
			if lit, ok := node.Arg.(*Literal); ok && captured[lit] && isStringValue(lit.Value) {
				return &Call{Target: node.Target, Method: "Get", Args: []Node{lit}, Indexer: true, Position: node.Position}, nil
			}
		case *Call:
			if !node.Indexer || len(node.Args) != 1 {
				return n, nil
			}

			if lit, ok := node.Args[0].(*Literal); ok && captured[lit] && !isStringValue(lit.Value) {
				return &Index{Target: node.Target, Arg: lit, Position: node.Position}, nil
			}
		}

		return n, nil
	})
	if err != nil {
		return nil, err
	}

	return &Path{Root: p.Root, Body: body}, nil
}
