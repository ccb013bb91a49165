package inference

import "lucent/src/node"
import "lucent/src/query"

// ----------------------------
// ----- Functions -----
// ----------------------------

func diag(message string) query.Diagnostic {
	return query.NewDiagnostic(query.Error, message)
}

func missingReturnValue(expected node.RType) query.Diagnostic {
	return diag("missing return value").Note("function returns: " + expected.String())
}

func ambiguousFunction(path node.Path, overloads []int) query.Diagnostic {
	d := diag("ambiguous function")
	for _, overload := range overloads {
		d = d.Note(node.FPath{Path: path, Overload: overload}.String())
	}
	return d
}
