package explang

// Walk visits n and every sub-expression below it (predecessors and
// arguments), depth first, predecessor before arguments. It stops at the
// first error returned by fn.
func Walk(n Node, fn func(Node) error) error {
	if n == nil {
		return nil
	}

	if err := fn(n); err != nil {
		return err
	}

	switch node := n.(type) {
	case *Member:
		return Walk(node.Target, fn)
	case *Index:
		if err := Walk(node.Target, fn); err != nil {
			return err
		}

		return Walk(node.Arg, fn)
	case *Call:
		if err := Walk(node.Target, fn); err != nil {
			return err
		}

		for _, arg := range node.Args {
			if err := Walk(arg, fn); err != nil {
				return err
			}
		}
	}

	return nil
}

// Rewrite rebuilds n bottom-up. fn receives each node after its children
// have been rewritten and returns the replacement (or the node itself).
// Nodes are never mutated; unchanged subtrees are shared.
func Rewrite(n Node, fn func(Node) (Node, error)) (Node, error) {
	switch node := n.(type) {
	case *Member:
		target, err := Rewrite(node.Target, fn)
		if err != nil {
			return nil, err
		}

		if target != node.Target {
			node = &Member{Target: target, Name: node.Name, Position: node.Position}
		}

		return fn(node)
	case *Index:
		target, err := Rewrite(node.Target, fn)
		if err != nil {
			return nil, err
		}

		arg, err := Rewrite(node.Arg, fn)
		if err != nil {
			return nil, err
		}

		if target != node.Target || arg != node.Arg {
			node = &Index{Target: target, Arg: arg, Position: node.Position}
		}

		return fn(node)
	case *Call:
		target, err := Rewrite(node.Target, fn)
		if err != nil {
			return nil, err
		}

		changed := target != node.Target
		args := make([]Node, len(node.Args))

		for i, arg := range node.Args {
			rewritten, err := Rewrite(arg, fn)
			if err != nil {
				return nil, err
			}

			args[i] = rewritten
			changed = changed || rewritten != arg
		}

		if changed {
			node = &Call{Target: target, Method: node.Method, Args: args, Indexer: node.Indexer, Position: node.Position}
		}

		return fn(node)
	case nil:
		return nil, nil
	default:
		return fn(n)
	}
}
