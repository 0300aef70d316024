package tree

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// PolicyKind selects how the initial expansion set is seeded.
type PolicyKind int

const (
	PolicyAll  PolicyKind = iota // every node in the supplied forest
	PolicyNone                   // nothing expanded
	PolicyIDs                    // an explicit list
)

// ExpansionPolicy describes the initial expansion set of an owned controller.
// The zero value expands everything.
//
// In YAML it is written as a boolean (true = all, false = none) or as a list of
// IDs.
type ExpansionPolicy struct {
	Kind PolicyKind
	IDs  []string
}

// ExpandAll expands every node of the forest the policy is resolved against.
func ExpandAll() ExpansionPolicy { return ExpansionPolicy{Kind: PolicyAll} }

// ExpandNone starts fully collapsed.
func ExpandNone() ExpansionPolicy { return ExpansionPolicy{Kind: PolicyNone} }

// ExpandIDs starts with exactly the given IDs expanded.
func ExpandIDs(ids ...string) ExpansionPolicy {
	return ExpansionPolicy{Kind: PolicyIDs, IDs: append([]string(nil), ids...)}
}

// Resolve materializes the policy against the forest currently supplied.
// Explicit lists keep their order; repeated IDs are kept once.
func (p ExpansionPolicy) Resolve(forest []*Node) []string {
	switch p.Kind {
	case PolicyNone:
		return []string{}
	case PolicyIDs:
		return dedupe(p.IDs)
	default:
		return CollectAllIDs(forest)
	}
}

func (p ExpansionPolicy) String() string {
	switch p.Kind {
	case PolicyNone:
		return "none"
	case PolicyIDs:
		return strings.Join(p.IDs, ",")
	default:
		return "all"
	}
}

// ParsePolicy parses the command-line form of a policy: "all" (or "true"),
// "none" (or "false"), or a comma separated list of IDs. The empty string
// means all.
func ParsePolicy(s string) (ExpansionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "true":
		return ExpandAll(), nil
	case "none", "false":
		return ExpandNone(), nil
	}

	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ExpansionPolicy{}, fmt.Errorf("invalid expansion policy %q", s)
	}
	return ExpandIDs(ids...), nil
}

// UnmarshalYAML accepts a boolean, a policy string or a sequence of IDs.
func (p *ExpansionPolicy) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var ids []string
		if err := value.Decode(&ids); err != nil {
			return fmt.Errorf("decoding expansion ids: %w", err)
		}
		*p = ExpandIDs(ids...)
		return nil
	case yaml.ScalarNode:
		var b bool
		if value.Tag == "!!bool" && value.Decode(&b) == nil {
			if b {
				*p = ExpandAll()
			} else {
				*p = ExpandNone()
			}
			return nil
		}
		parsed, err := ParsePolicy(value.Value)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	default:
		return fmt.Errorf("line %d: expansion policy must be a boolean or a list of ids", value.Line)
	}
}

// MarshalYAML writes the policy back in its YAML form.
func (p ExpansionPolicy) MarshalYAML() (any, error) {
	switch p.Kind {
	case PolicyNone:
		return false, nil
	case PolicyIDs:
		return p.IDs, nil
	default:
		return true, nil
	}
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
