package authz

import "sort"

// Decision is the outcome of one authorization check. Ephemeral; it is
// handed to the audit layer and then discarded.
type Decision struct {
	Allow       bool       `json:"allow"`
	MatchedRole Role       `json:"matched_role,omitempty"`
	Required    Permission `json:"required_permission"`
}

// Engine answers allow/deny questions against a fixed policy.
type Engine struct {
	policy *Policy
}

// NewEngine constructs an Engine over the given policy snapshot.
func NewEngine(policy *Policy) *Engine {
	return &Engine{policy: policy}
}

// Policy exposes the underlying snapshot for read-only introspection.
func (e *Engine) Policy() *Policy {
	return e.policy
}

// Decide expands every presented role and allows if any member of the
// union permits the action. The model is additive only: extra roles can
// grant, never revoke. An empty role set denies everything.
func (e *Engine) Decide(roles []Role, action Permission) Decision {
	for _, role := range roles {
		for _, r := range e.policy.Expand(role) {
			if e.policy.Permits(r, action) {
				return Decision{Allow: true, MatchedRole: r, Required: action}
			}
		}
	}
	return Decision{Allow: false, Required: action}
}

// EffectivePermissions returns the deduplicated permissions reachable
// from the given roles through the hierarchy, sorted.
func (e *Engine) EffectivePermissions(roles []Role) []Permission {
	seen := map[Permission]bool{}
	for _, role := range roles {
		for _, r := range e.policy.Expand(role) {
			for perm := range e.policy.grants[r] {
				seen[perm] = true
			}
		}
	}
	perms := make([]Permission, 0, len(seen))
	for p := range seen {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}
