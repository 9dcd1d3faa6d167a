package auth

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/internal/platform/metrics"
)

const (
	// MarkerPublic opens a prefix to unauthenticated callers.
	MarkerPublic = "public"
	// MarkerAnyRole admits any authenticated caller.
	MarkerAnyRole = "*"
)

// Rule is one row of the role table.
type Rule struct {
	Method  string // empty matches every method
	Prefix  string
	Public  bool
	AnyRole bool
	Roles   []Role
}

// Allows reports whether a caller with role passes this rule.
func (r Rule) Allows(role Role) bool {
	if r.Public || r.AnyRole {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

func (r Rule) String() string {
	key := r.Prefix
	if r.Method != "" {
		key = r.Method + " " + r.Prefix
	}
	switch {
	case r.Public:
		return key + " -> " + MarkerPublic
	case r.AnyRole:
		return key + " -> " + MarkerAnyRole
	}
	names := make([]string, len(r.Roles))
	for i, role := range r.Roles {
		names[i] = string(role)
	}
	return key + " -> " + strings.Join(names, ", ")
}

func (r Rule) matches(method, path string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	if r.Prefix == "/" {
		return true
	}
	return path == r.Prefix || strings.HasPrefix(path, r.Prefix+"/")
}

// RoleTable maps route prefixes to allowed roles. It is built once at start-up
// and only read afterwards.
type RoleTable struct {
	rules []Rule
}

// NewRoleTable parses entries of the form "/prefix" or "METHOD /prefix" with a
// list of role names, "public" or "*". Unknown roles are rejected so a typo
// cannot silently lock a route.
func NewRoleTable(entries map[string][]string) (*RoleTable, error) {
	rules := make([]Rule, 0, len(entries))
	for key, roles := range entries {
		rule, err := parseRule(key, roles)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	// Longest prefix first; a method-qualified rule beats an unqualified one
	// with the same prefix.
	sort.Slice(rules, func(i, j int) bool {
		if len(rules[i].Prefix) != len(rules[j].Prefix) {
			return len(rules[i].Prefix) > len(rules[j].Prefix)
		}
		if (rules[i].Method != "") != (rules[j].Method != "") {
			return rules[i].Method != ""
		}
		if rules[i].Prefix != rules[j].Prefix {
			return rules[i].Prefix < rules[j].Prefix
		}
		return rules[i].Method < rules[j].Method
	})

	return &RoleTable{rules: rules}, nil
}

func parseRule(key string, roles []string) (Rule, error) {
	var rule Rule
	fields := strings.Fields(key)
	switch len(fields) {
	case 1:
		rule.Prefix = fields[0]
	case 2:
		rule.Method = strings.ToUpper(fields[0])
		rule.Prefix = fields[1]
	default:
		return Rule{}, fmt.Errorf("role table: malformed key %q", key)
	}
	if !strings.HasPrefix(rule.Prefix, "/") {
		return Rule{}, fmt.Errorf("role table: prefix %q must start with /", rule.Prefix)
	}
	if len(rule.Prefix) > 1 {
		rule.Prefix = strings.TrimRight(rule.Prefix, "/")
	}
	if len(roles) == 0 {
		return Rule{}, fmt.Errorf("role table: %q lists no roles", key)
	}

	for _, name := range roles {
		switch name {
		case MarkerPublic:
			rule.Public = true
		case MarkerAnyRole:
			rule.AnyRole = true
		default:
			role, ok := ParseRole(name)
			if !ok {
				return Rule{}, fmt.Errorf("role table: %q names unknown role %q", key, name)
			}
			rule.Roles = append(rule.Roles, role)
		}
	}
	if rule.Public && (rule.AnyRole || len(rule.Roles) > 0) {
		return Rule{}, fmt.Errorf("role table: %q mixes public with roles", key)
	}
	return rule, nil
}

// Match returns the most specific rule covering the request.
func (t *RoleTable) Match(method, path string) (Rule, bool) {
	for _, r := range t.rules {
		if r.matches(method, path) {
			return r, true
		}
	}
	return Rule{}, false
}

// Rules returns a copy of the table in match order.
func (t *RoleTable) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Gate is the coarse, role-only authorization check. Paths without a rule are
// refused; ownership checks happen later in the services.
func Gate(table *RoleTable) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rule, ok := table.Match(req.Method, req.URL.Path)
			if !ok {
				metrics.AuthFailuresTotal.WithLabelValues("no_rule").Inc()
				return httpx.Forbidden("access denied")
			}
			if rule.Public || req.Method == http.MethodOptions {
				return next(c)
			}

			caller, ok := CallerFromContext(req.Context())
			if !ok {
				metrics.AuthFailuresTotal.WithLabelValues("missing_caller").Inc()
				return httpx.Unauthenticated()
			}
			if !rule.Allows(caller.Role) {
				metrics.AuthFailuresTotal.WithLabelValues("role_denied").Inc()
				return httpx.Forbidden("insufficient role")
			}
			return next(c)
		}
	}
}

// DefaultRoleTable is the access table used when no ACCESS_RULES_FILE is set.
func DefaultRoleTable() map[string][]string {
	const (
		admin   = string(RoleAdmin)
		doctor  = string(RoleDoctor)
		nurse   = string(RoleNurse)
		pharm   = string(RolePharmacist)
		labTech = string(RoleLabTechnician)
		patient = string(RolePatient)
	)
	return map[string][]string{
		"/api/auth/register": {MarkerPublic},
		"/api/auth/login":    {MarkerPublic},
		"/api/auth/logout":   {MarkerPublic},
		"/api/public":        {MarkerPublic},
		"/api/auth/me":       {MarkerAnyRole},

		"/api/admin":         {admin},
		"/api/dashboard":     {MarkerAnyRole},
		"/api/notifications": {MarkerAnyRole},

		"/api/patients":    {admin, doctor, nurse},
		"/api/patients/me": {patient},

		"/api/doctors":    {MarkerAnyRole},
		"/api/doctors/me": {doctor},

		"/api/appointments":      {admin, doctor, nurse, patient},
		"POST /api/appointments": {admin, nurse, patient},

		"/api/prescriptions":      {admin, doctor, nurse, pharm, patient},
		"POST /api/prescriptions": {doctor},

		"/api/lab-tests":      {admin, doctor, nurse, labTech, patient},
		"POST /api/lab-tests": {doctor},
		"PUT /api/lab-tests":  {admin, labTech},

		"/api/inventory":      {admin, nurse, pharm},
		"POST /api/inventory": {admin, pharm},
		"PUT /api/inventory":  {admin, pharm},

		"/api/blogs": {admin, doctor},

		"/api/documents":        {admin, doctor, nurse, patient},
		"POST /api/documents":   {patient},
		"DELETE /api/documents": {patient},

		"/ws": {MarkerAnyRole},
	}
}
