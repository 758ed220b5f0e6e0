// Package policyopa evaluates lifecycle authorization with OPA. The default
// policy ships embedded; deployments can point AUTHZ_POLICY_PATH at their own
// rego files to replace it.
package policyopa

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"

	"docseal/internal/domain"
)

const defaultQuery = "data.docseal.authz.result"

// defaultPolicy allows every staff account the routine lifecycle actions and
// reserves permanent removal for superusers.
const defaultPolicy = `package docseal.authz

default allow = false

allow {
	input.action != "purge"
}

allow {
	input.action == "purge"
	input.is_super
}

reason = "" {
	allow
}

reason = "permanent removal requires a superuser" {
	not allow
	input.action == "purge"
}

reason = "action not permitted" {
	not allow
	input.action != "purge"
}

result = {"allow": allow, "reason": reason}
`

type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine compiles the embedded default policy.
func NewEngine(ctx context.Context) (*Engine, error) {
	return newEngine(ctx, rego.Module("authz.rego", defaultPolicy))
}

// NewEngineFromPath compiles policy files from a directory or file,
// replacing the embedded default.
func NewEngineFromPath(ctx context.Context, path string) (*Engine, error) {
	return newEngine(ctx, rego.Load([]string{path}, nil))
}

func newEngine(ctx context.Context, source func(*rego.Rego)) (*Engine, error) {
	capabilities := ast.CapabilitiesForThisVersion()
	capabilities.Builtins = filterBuiltins(capabilities.Builtins)
	compiler := ast.NewCompiler().WithCapabilities(capabilities)

	r := rego.New(
		rego.Query(defaultQuery),
		rego.Compiler(compiler),
		rego.StrictBuiltinErrors(true),
		source,
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Authorize(ctx context.Context, input domain.AuthzInput) (domain.AuthzDecision, error) {
	if e == nil {
		return domain.AuthzDecision{}, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return domain.AuthzDecision{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.AuthzDecision{}, errors.New("empty policy result")
	}
	return decodeDecision(results[0].Expressions[0].Value)
}

func decodeDecision(value any) (domain.AuthzDecision, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return domain.AuthzDecision{}, err
	}
	var decision domain.AuthzDecision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return domain.AuthzDecision{}, err
	}
	return decision, nil
}
