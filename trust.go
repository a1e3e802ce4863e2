package toolguard

import (
	"strings"

	"github.com/ginkida/toolguard/policy"
)

// TrustRegistry classifies agent identities using the active policy's
// agents section. Comparison is case-insensitive. An agent listed in
// both the trusted and restricted lists is a policy authoring error and
// resolves to untrusted, the safer outcome.
type TrustRegistry struct {
	trusted    map[string]struct{}
	restricted map[string]struct{}
}

// NewTrustRegistry builds a registry from a policy's agent lists.
func NewTrustRegistry(agents policy.Agents) *TrustRegistry {
	r := &TrustRegistry{
		trusted:    make(map[string]struct{}, len(agents.Trusted)),
		restricted: make(map[string]struct{}, len(agents.Restricted)),
	}
	for _, name := range agents.Trusted {
		if normalized := normalizeAgentName(name); normalized != "" {
			r.trusted[normalized] = struct{}{}
		}
	}
	for _, name := range agents.Restricted {
		if normalized := normalizeAgentName(name); normalized != "" {
			r.restricted[normalized] = struct{}{}
		}
	}
	return r
}

// IsTrusted reports whether the named agent may be auto-approved. An
// absent name is untrusted, and so is any agent not explicitly on the
// trusted list (unknown is equivalent to restricted).
func (r *TrustRegistry) IsTrusted(agentName string) bool {
	normalized := normalizeAgentName(agentName)
	if normalized == "" {
		return false
	}
	if _, restricted := r.restricted[normalized]; restricted {
		return false
	}
	_, trusted := r.trusted[normalized]
	return trusted
}

func normalizeAgentName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
