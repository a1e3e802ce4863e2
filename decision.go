// Package toolguard is the tool-call authorization engine for an
// autonomous coding-agent platform. Given a requested action (a shell
// command or a filesystem path operation) and the identity of the agent
// requesting it, the engine decides whether the action may proceed
// without human confirmation.
//
// Basic usage:
//
//	cfg, _ := toolguard.ConfigFromEnv()
//	engine := toolguard.NewEngine(cfg,
//	    toolguard.WithAuditSink(toolguard.NewJSONLSink(auditPath)),
//	)
//	decision := engine.Authorize(toolguard.BashRequest("pytest tests/", toolguard.TopLevel()))
//	if decision.Approved {
//	    // proceed without asking the user
//	}
package toolguard

import "strings"

// ActionKind is the closed set of tool-call kinds the engine understands.
// Unrecognized kinds always deny.
type ActionKind int

const (
	// KindUnknown covers any action kind the engine does not recognize.
	KindUnknown ActionKind = iota

	// KindBash is a shell command execution request.
	KindBash

	// KindRead is a file read request.
	KindRead

	// KindWrite is a file create/overwrite request.
	KindWrite

	// KindEdit is an in-place file modification request.
	KindEdit
)

// String returns the lowercase kind name.
func (k ActionKind) String() string {
	switch k {
	case KindBash:
		return "bash"
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// IsPath reports whether the kind carries a file path payload.
func (k ActionKind) IsPath() bool {
	return k == KindRead || k == KindWrite || k == KindEdit
}

// ParseActionKind maps a tool name to an ActionKind. Anything that is not
// a recognized tool resolves to KindUnknown.
func ParseActionKind(toolName string) ActionKind {
	switch strings.ToLower(strings.TrimSpace(toolName)) {
	case "bash":
		return KindBash
	case "read":
		return KindRead
	case "write":
		return KindWrite
	case "edit":
		return KindEdit
	default:
		return KindUnknown
	}
}

// Caller describes the execution context of one authorization request,
// as supplied by the host runtime.
type Caller struct {
	// Subagent is true when the request originates from a delegated
	// sub-agent rather than the top-level session.
	Subagent bool

	// AgentName is the delegated agent's declared identity. Empty for
	// top-level requests; empty for a sub-agent means untrusted.
	AgentName string
}

// TopLevel returns the caller context for the top-level session.
func TopLevel() Caller {
	return Caller{}
}

// Delegated returns the caller context for a delegated sub-agent.
func Delegated(agentName string) Caller {
	return Caller{Subagent: true, AgentName: agentName}
}

// Request is one authorization request. Exactly one payload field is
// meaningful, selected by Kind.
type Request struct {
	Kind    ActionKind
	Command string // KindBash
	Path    string // KindRead, KindWrite, KindEdit
	Caller  Caller
}

// BashRequest builds a shell-command authorization request.
func BashRequest(command string, caller Caller) Request {
	return Request{Kind: KindBash, Command: command, Caller: caller}
}

// ReadRequest builds a file-read authorization request.
func ReadRequest(path string, caller Caller) Request {
	return Request{Kind: KindRead, Path: path, Caller: caller}
}

// WriteRequest builds a file-write authorization request.
func WriteRequest(path string, caller Caller) Request {
	return Request{Kind: KindWrite, Path: path, Caller: caller}
}

// EditRequest builds a file-edit authorization request.
func EditRequest(path string, caller Caller) Request {
	return Request{Kind: KindEdit, Path: path, Caller: caller}
}

// Candidate returns the string the engine evaluates for this request.
func (r Request) Candidate() string {
	if r.Kind == KindBash {
		return r.Command
	}
	return r.Path
}

// Decision is the outcome of one authorization request. Decisions are
// created fresh per request and never mutated afterwards.
type Decision struct {
	// ID uniquely identifies this decision for audit correlation.
	ID string

	// Approved is true when the action may proceed without human
	// confirmation.
	Approved bool

	// Reason explains the outcome in human-readable form.
	Reason string

	// SecurityRisk marks denials caused by a structural attack pattern
	// or a blacklist match.
	SecurityRisk bool

	// MatchedPattern is the policy pattern that produced the match, if
	// pattern evaluation was reached.
	MatchedPattern string
}
