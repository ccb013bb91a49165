package x86

import "lucent/src/node"

// walkNode visits n and every LNode reachable from it, in no particular
// order; used by reservedOf to find explicit register literals without
// duplicating the full L-IR shape elsewhere.
func walkNode(n node.LNode, visit func(node.LNode)) {
	if n == nil {
		return
	}
	visit(n)
	switch v := n.(type) {
	case node.LBlock:
		for _, u := range v.Units {
			walkUnit(u, visit)
		}
		walkNode(v.Value, visit)
	case node.LIf:
		walkNode(v.Condition, visit)
		walkNode(v.Then, visit)
		walkNode(v.Else, visit)
	case node.LCall:
		if path, ok := v.Receiver.(node.LReceiverMethod); ok {
			walkNode(path.Node, visit)
		}
		for _, a := range v.Args {
			walkNode(a, visit)
		}
	case node.LCast:
		walkNode(v.Node, visit)
	case node.LBinary:
		walkNode(v.Left, visit)
		walkNode(v.Right, visit)
	case node.LUnary:
		walkNode(v.Node, visit)
	case node.LDereference:
		walkNode(v.Place.Node, visit)
	case node.LNever:
		walkUnit(v.Unit, visit)
	}
}

// walkUnit visits every LNode reachable from an LUnit tree.
func walkUnit(u node.LUnit, visit func(node.LNode)) {
	if u == nil {
		return
	}
	switch v := u.(type) {
	case node.LUBlock:
		for _, inner := range v.Units {
			walkUnit(inner, visit)
		}
	case node.LUIf:
		walkNode(v.Condition, visit)
		walkUnit(v.Then, visit)
		walkUnit(v.Else, visit)
	case node.LUCall:
		if path, ok := v.Receiver.(node.LReceiverMethod); ok {
			walkNode(path.Node, visit)
		}
		for _, a := range v.Args {
			walkNode(a, visit)
		}
	case node.LUReturn:
		walkNode(v.Value, visit)
	case node.LUSet:
		walkNode(v.Place.Node, visit)
		walkNode(v.Value, visit)
	case node.LULoop:
		walkUnit(v.Body, visit)
	case node.LUNode:
		walkNode(v.Node, visit)
	}
}
