package authz

import (
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
)

const rbacModel = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.act == p.act
`

type Authorizer struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer builds an in-memory RBAC enforcer seeded from rolePermissions.
func NewAuthorizer(rolePermissions map[rbp.Role][]rbp.Permission) (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for role, perms := range rolePermissions {
		for _, perm := range perms {
			if _, err := enforcer.AddPolicy(SubjectFromRole(string(role)), string(perm)); err != nil {
				return nil, err
			}
		}
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// SubjectFromRole normalizes a role name into a policy subject.
func SubjectFromRole(role string) string {
	role = strings.TrimSpace(strings.ToUpper(role))
	if role == "" {
		role = "ANONYMOUS"
	}
	return "role:" + role
}

// Inherit makes child hold every permission of parent.
func (a *Authorizer) Inherit(child string, parent string) error {
	_, err := a.enforcer.AddGroupingPolicy(SubjectFromRole(child), SubjectFromRole(parent))
	return err
}

func (a *Authorizer) Allowed(role string, permission rbp.Permission) (bool, error) {
	return a.enforcer.Enforce(SubjectFromRole(role), string(permission))
}
