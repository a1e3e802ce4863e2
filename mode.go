package toolguard

import "strings"

// Mode controls where auto-approval is permitted at all. The mode is
// resolved before any policy evaluation: a request the mode disallows
// never reaches the policy store, pattern matcher, or trust registry.
type Mode string

const (
	// ModeEverywhere enables auto-approval for the top-level session
	// and for delegated sub-agents.
	ModeEverywhere Mode = "everywhere"

	// ModeSubagentOnly enables auto-approval only for requests that
	// originate from a delegated sub-agent context. Top-level requests
	// are denied unconditionally.
	ModeSubagentOnly Mode = "subagent_only"

	// ModeDisabled denies every request, independent of policy.
	ModeDisabled Mode = "disabled"
)

// ParseMode converts a configuration string to a Mode. An absent or
// unrecognized value resolves to the most conservative mode, disabled.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ModeEverywhere):
		return ModeEverywhere
	case string(ModeSubagentOnly):
		return ModeSubagentOnly
	case string(ModeDisabled):
		return ModeDisabled
	default:
		return ModeDisabled
	}
}

// Allows reports whether this mode permits auto-approval for the given
// caller context.
func (m Mode) Allows(caller Caller) bool {
	switch m {
	case ModeEverywhere:
		return true
	case ModeSubagentOnly:
		return caller.Subagent
	default:
		return false
	}
}

// denyReason names why the mode rejected this caller.
func (m Mode) denyReason(caller Caller) string {
	if m == ModeSubagentOnly && !caller.Subagent {
		return "auto-approval is restricted to delegated sub-agents"
	}
	return "auto-approval is disabled"
}
