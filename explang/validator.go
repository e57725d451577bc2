package explang

// CheckConstantArguments ensures every Index argument and every Call argument
// of p is a Literal. It must run after SubstituteCaptures, so that captured
// variables have already been frozen into literals.
//
// Arguments are resolved before the walk reaches their step, so a
// non-constant argument would need evaluation against a partially resolved
// chain. Such shapes are rejected with a *ParseError.
func CheckConstantArguments(p *Path) error {
	if p == nil || p.Root == nil {
		return NewParseError(ErrBrokenChain, MessageBrokenChain, nil)
	}

	if _, ok := p.Chain(); !ok {
		return NewParseError(ErrBrokenChain, MessageBrokenChain, p.Body)
	}

	return Walk(p.Body, checkNode)
}

func checkNode(n Node) error {
	switch node := n.(type) {
	case *Root, *Member, *Literal:
		return nil
	case *Index:
		if _, ok := node.Arg.(*Literal); !ok {
			return NewParseError(ErrNonConstantIndex, MessageNonConstantIndex, node)
		}

		return nil
	case *Call:
		for _, arg := range node.Args {
			if _, ok := arg.(*Literal); !ok {
				return NewParseError(ErrNonConstantArgument, MessageNonConstantArgument, node)
			}
		}

		return nil
	default:
		return NewParseError(ErrUnrecognizedNode, MessageUnrecognizedNode, n)
	}
}
