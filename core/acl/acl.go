// Package acl validates extended ACL rule parameters and renders them into
// the rule clause the MLX CLI expects.
package acl

import (
	"strconv"
	"strings"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

const (
	MinSeqID      = 1
	MaxSeqID      = 214748364
	MaxNameLength = 255

	ActionPermit = "permit"
	ActionDeny   = "deny"
)

var reservedNames = map[string]bool{"all": true, "test": true}

// Rule is a validated ACL rule.
type Rule struct {
	ACLName string
	SeqID   int
	Action  string
	Clause  []string
}

// Command renders the rule line entered under the ACL context.
func (r Rule) Command() string {
	parts := make([]string, 0, len(r.Clause)+3)
	if r.SeqID > 0 {
		parts = append(parts, "sequence", strconv.Itoa(r.SeqID))
	}
	parts = append(parts, r.Action)
	parts = append(parts, r.Clause...)
	return strings.Join(parts, " ")
}

// ParamParser checks the parameters shared by every ACL type.
type ParamParser struct{}

// Parse validates p and builds the rule.
func (ParamParser) Parse(p entities.ACLRuleParams) (Rule, error) {
	var pp ParamParser
	name, err := pp.ParseACLName(p.ACLName)
	if err != nil {
		return Rule{}, err
	}
	seq, err := pp.ParseSeqID(p.SeqID)
	if err != nil {
		return Rule{}, err
	}
	action, err := pp.ParseAction(p.Action)
	if err != nil {
		return Rule{}, err
	}
	mirror, err := pp.ParseMirror(p)
	if err != nil {
		return Rule{}, err
	}
	logKeyword, err := pp.ParseLog(p)
	if err != nil {
		return Rule{}, err
	}

	clause := []string{orDefault(p.Protocol, "ip"), orDefault(p.Source, "any"), orDefault(p.Destination, "any")}
	for _, kw := range []string{mirror, logKeyword} {
		if kw != "" {
			clause = append(clause, kw)
		}
	}
	return Rule{ACLName: name, SeqID: seq, Action: action, Clause: clause}, nil
}

// ParseSeqID accepts 0 (device assigned) or 1..214748364.
func (ParamParser) ParseSeqID(seq int) (int, error) {
	if seq == 0 {
		return 0, nil
	}
	if seq < MinSeqID || seq > MaxSeqID {
		return 0, entities.InvalidParameter("seq_id %d, valid range is %d to %d", seq, MinSeqID, MaxSeqID)
	}
	return seq, nil
}

// ParseAction accepts permit or deny.
func (ParamParser) ParseAction(action string) (string, error) {
	switch action {
	case ActionPermit, ActionDeny:
		return action, nil
	case "":
		return "", entities.InvalidParameter("action is required")
	}
	return "", entities.InvalidParameter("action %q, specify permit or deny", action)
}

// ParseMirror returns "mirror" when requested. Mirroring applies to permit
// rules only and cannot be combined with log.
func (ParamParser) ParseMirror(p entities.ACLRuleParams) (string, error) {
	if !p.Mirror {
		return "", nil
	}
	if p.Action != "" && p.Action != ActionPermit {
		return "", entities.InvalidParameter("mirror keyword is applicable only for permit rules")
	}
	if p.Log {
		return "", entities.InvalidParameter("log and mirror keywords can not be used together")
	}
	return "mirror", nil
}

// ParseLog returns "log" when requested.
func (ParamParser) ParseLog(p entities.ACLRuleParams) (string, error) {
	if !p.Log {
		return "", nil
	}
	if p.Mirror {
		return "", entities.InvalidParameter("log and mirror keywords can not be used together")
	}
	return "log", nil
}

// ParseACLName accepts names of up to 255 characters except reserved ones.
func (ParamParser) ParseACLName(name string) (string, error) {
	if name == "" {
		return "", entities.InvalidParameter("acl name can not be empty")
	}
	if len(name) > MaxNameLength {
		return "", entities.InvalidParameter("acl name can't be more than %d characters", MaxNameLength)
	}
	if reservedNames[strings.ToLower(name)] {
		return "", entities.InvalidParameter("%s cannot be used as an acl name", name)
	}
	return name, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
