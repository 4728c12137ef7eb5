// Package gates evaluates advisory, client-side feature gating for the
// console's dashboard surfaces. Gating is coarse (which screens a role may
// see) and never replaces the access resolver's tenant scoping; the backend
// remains the enforcement point.
package gates

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	profiledomain "mallops-console/internal/profile/domain"
)

// Default Rego policy: campaign CRUD and analytics for every operator role,
// messaging templates for mall admins and up, account administration for
// super admins only. Unknown roles match nothing and all gates stay closed.
const defaultRegoPolicy = `package console.gates

default manage_campaigns := false
default view_analytics := false
default manage_templates := false
default manage_users := false

operator_roles := {"shop_admin", "mall_admin", "super_admin"}

manage_campaigns if {
	input.role in operator_roles
}

view_analytics if {
	input.role in operator_roles
}

manage_templates if {
	input.role == "mall_admin"
}

manage_templates if {
	input.role == "super_admin"
}

manage_users if {
	input.role == "super_admin"
}
`

// Gates holds the evaluated feature switches for one profile.
type Gates struct {
	ManageCampaigns bool
	ViewAnalytics   bool
	ManageTemplates bool
	ManageUsers     bool
}

// Evaluator evaluates gate policies with the in-process OPA Rego engine.
// Extra policy modules (e.g. per-deployment overrides) may be appended; they
// share the console.gates package.
type Evaluator struct {
	extraPolicies []string
}

// NewEvaluator returns an Evaluator. extraPolicies may be nil.
func NewEvaluator(extraPolicies ...string) *Evaluator {
	return &Evaluator{extraPolicies: extraPolicies}
}

// HealthCheck verifies the embedded default policy compiles and evaluates.
func (e *Evaluator) HealthCheck(ctx context.Context) error {
	_, err := e.Evaluate(ctx, &profiledomain.Profile{
		Username: "healthcheck",
		Role:     profiledomain.RoleShopAdmin,
		Active:   true,
	})
	return err
}

// Evaluate returns the gates for the profile. A nil profile or any
// compilation/evaluation failure yields all gates closed.
func (e *Evaluator) Evaluate(ctx context.Context, p *profiledomain.Profile) (Gates, error) {
	if p == nil {
		return Gates{}, nil
	}

	modules := map[string]string{"gates_0.rego": defaultRegoPolicy}
	for i, policy := range e.extraPolicies {
		modules[fmt.Sprintf("gates_%d.rego", i+1)] = policy
	}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return Gates{}, fmt.Errorf("compile gate policies: %w", err)
	}

	input := map[string]interface{}{
		"role": string(p.Role),
	}
	if p.MallID != nil {
		input["mall_id"] = *p.MallID
	}
	if p.ShopID != nil {
		input["shop_id"] = *p.ShopID
	}

	var out Gates
	for _, q := range []struct {
		rule string
		dst  *bool
	}{
		{"manage_campaigns", &out.ManageCampaigns},
		{"view_analytics", &out.ViewAnalytics},
		{"manage_templates", &out.ManageTemplates},
		{"manage_users", &out.ManageUsers},
	} {
		query := rego.New(
			rego.Query("data.console.gates."+q.rule),
			rego.Compiler(compiler),
			rego.Input(input),
		)
		rs, err := query.Eval(ctx)
		if err != nil {
			return Gates{}, fmt.Errorf("eval %s: %w", q.rule, err)
		}
		if len(rs) > 0 && len(rs[0].Expressions) > 0 {
			if v, ok := rs[0].Expressions[0].Value.(bool); ok {
				*q.dst = v
			}
		}
	}
	return out, nil
}
