package mlx

import (
	"context"

	"github.com/carlosrabelo/switchkit/core/acl"
	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/platform/invoke"
)

// AddACLRule appends a rule to an extended IPv4 ACL, creating the ACL if needed.
func (d *Driver) AddACLRule(ctx context.Context, cb ports.Callback, p entities.ACLRuleParams) error {
	rule, err := acl.ParamParser{}.Parse(p)
	if err != nil {
		return err
	}
	return invoke.CLISet(ctx, cb, "ip access-list extended "+rule.ACLName, rule.Command())
}
