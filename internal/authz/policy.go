package authz

import (
	"fmt"
	"sort"
)

// Policy is an immutable snapshot of the role hierarchy and permission
// catalog. It is built once at startup and shared read-only across all
// request handlers, so no locking is needed.
type Policy struct {
	closure map[Role][]Role              // role -> itself + all inherited roles
	grants  map[Role]map[Permission]bool // direct grants per role
}

// NewPolicy validates the role table and precomputes the inheritance
// closure for every role. It fails with a ConfigurationError on unknown
// parent references or cycles; a cyclic hierarchy must never reach the
// request path.
func NewPolicy(config map[Role]RoleConfig) (*Policy, error) {
	for role, rc := range config {
		for _, parent := range rc.Parents {
			if _, ok := config[parent]; !ok {
				return nil, &ConfigurationError{
					Reason: fmt.Sprintf("role %s inherits from undeclared role %s", role, parent),
				}
			}
		}
	}

	if cycle := findCycle(config); cycle != "" {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("role hierarchy contains a cycle through %s", cycle),
		}
	}

	p := &Policy{
		closure: make(map[Role][]Role, len(config)),
		grants:  make(map[Role]map[Permission]bool, len(config)),
	}
	for role, rc := range config {
		set := make(map[Permission]bool, len(rc.Grants))
		for _, perm := range rc.Grants {
			set[perm] = true
		}
		p.grants[role] = set
	}
	for role := range config {
		visited := map[Role]bool{}
		walkParents(role, config, visited)
		members := make([]Role, 0, len(visited))
		for r := range visited {
			members = append(members, r)
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		p.closure[role] = members
	}
	return p, nil
}

// MustPolicy is NewPolicy for static tables known to be well-formed.
func MustPolicy(config map[Role]RoleConfig) *Policy {
	p, err := NewPolicy(config)
	if err != nil {
		panic(err)
	}
	return p
}

func walkParents(role Role, config map[Role]RoleConfig, visited map[Role]bool) {
	if visited[role] {
		return
	}
	visited[role] = true
	for _, parent := range config[role].Parents {
		walkParents(parent, config, visited)
	}
}

// findCycle runs a coloring DFS over the parent graph and returns the
// name of a role on a cycle, or "" if the graph is acyclic.
func findCycle(config map[Role]RoleConfig) Role {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[Role]int, len(config))
	var visit func(Role) Role
	visit = func(role Role) Role {
		color[role] = grey
		for _, parent := range config[role].Parents {
			switch color[parent] {
			case grey:
				return parent
			case white:
				if hit := visit(parent); hit != "" {
					return hit
				}
			}
		}
		color[role] = black
		return ""
	}
	for role := range config {
		if color[role] == white {
			if hit := visit(role); hit != "" {
				return hit
			}
		}
	}
	return ""
}

// Known reports whether the role is part of the closed role set.
func (p *Policy) Known(role Role) bool {
	_, ok := p.closure[role]
	return ok
}

// Roles returns the closed role set in sorted order.
func (p *Policy) Roles() []Role {
	roles := make([]Role, 0, len(p.closure))
	for r := range p.closure {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// Expand returns the role plus everything it transitively inherits from.
// A role outside the closed set expands to just itself.
func (p *Policy) Expand(role Role) []Role {
	members, ok := p.closure[role]
	if !ok {
		return []Role{role}
	}
	out := make([]Role, len(members))
	copy(out, members)
	return out
}

// Permits reports whether the role is directly granted the action or the
// wildcard. Roles absent from the catalog permit nothing.
func (p *Policy) Permits(role Role, action Permission) bool {
	set, ok := p.grants[role]
	if !ok {
		return false
	}
	return set[action] || set[PermAll]
}

// GrantingRoles lists every role whose expanded set permits the action.
// Used to tell a denied caller which roles would have sufficed.
func (p *Policy) GrantingRoles(action Permission) []Role {
	var roles []Role
	for role := range p.closure {
		for _, r := range p.closure[role] {
			if p.Permits(r, action) {
				roles = append(roles, role)
				break
			}
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}
