package auth

import (
	"strings"
)

type Access int

const (
	// Authenticated is the zero value so an unlisted route is never public.
	Authenticated Access = iota
	Public
	Admin
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Admin:
		return "admin"
	default:
		return "authenticated"
	}
}

// AnyMethod matches every HTTP method of a resource.
const AnyMethod = "*"

type Rule struct {
	Method   string
	Resource string
	Access   Access
}

type ruleKey struct {
	method   string
	resource string
}

// Policy maps (method, resource) to the access level a request needs.
// A resource is either a full route template ("/Auth/register-admin")
// or its first path segment ("Books").
type Policy struct {
	rules    map[ruleKey]Access
	fallback Access
}

func NewPolicy(fallback Access, rules ...Rule) *Policy {
	p := &Policy{
		rules:    make(map[ruleKey]Access, len(rules)),
		fallback: fallback,
	}
	for _, r := range rules {
		p.rules[ruleKey{method: strings.ToUpper(r.Method), resource: strings.ToLower(r.Resource)}] = r.Access
	}
	return p
}

// Lookup resolves the access for a matched route template such as "/Books/:id".
func (p *Policy) Lookup(method, route string) Access {
	method = strings.ToUpper(method)
	route = strings.ToLower(route)
	segment := Resource(route)
	for _, k := range []ruleKey{
		{method: method, resource: route},
		{method: AnyMethod, resource: route},
		{method: method, resource: segment},
		{method: AnyMethod, resource: segment},
	} {
		if a, ok := p.rules[k]; ok {
			return a
		}
	}
	return p.fallback
}

// Allows reports whether id (nil for anonymous callers) satisfies access.
func Allows(access Access, id *Identity) bool {
	switch access {
	case Public:
		return true
	case Admin:
		return id != nil && id.IsAdmin()
	default:
		return id != nil
	}
}

// Resource returns the first segment of a route template.
func Resource(route string) string {
	route = strings.TrimPrefix(route, "/")
	if i := strings.IndexByte(route, '/'); i >= 0 {
		route = route[:i]
	}
	return strings.ToLower(route)
}
