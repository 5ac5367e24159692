package infra

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

// ModelText is a plain RBAC model: roles inherit from roles, permissions are
// (role, resource, action) triples.
const ModelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// NewEnforcer builds an enforcer from ModelText. When policyPath is set the
// policy is read from that CSV file, otherwise the caller seeds it.
func NewEnforcer(policyPath string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(ModelText)
	if err != nil {
		return nil, err
	}
	if policyPath == "" {
		return casbin.NewEnforcer(m)
	}
	return casbin.NewEnforcer(m, fileadapter.NewAdapter(policyPath))
}
