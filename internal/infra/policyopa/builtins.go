package policyopa

import "github.com/open-policy-agent/opa/ast"

// Authorization policies are pure decisions over the input document; only
// side-effect-free builtins are available to them.
var allowedBuiltins = map[string]struct{}{
	"concat":     {},
	"contains":   {},
	"count":      {},
	"eq":         {},
	"equal":      {},
	"endswith":   {},
	"lower":      {},
	"neq":        {},
	"object.get": {},
	"sprintf":    {},
	"startswith": {},
	"split":      {},
	"trim":       {},
	"upper":      {},
}

func filterBuiltins(builtins []*ast.Builtin) []*ast.Builtin {
	allowed := make([]*ast.Builtin, 0, len(builtins))
	for _, builtin := range builtins {
		if _, ok := allowedBuiltins[builtin.Name]; !ok {
			continue
		}
		allowed = append(allowed, builtin)
	}
	return allowed
}
