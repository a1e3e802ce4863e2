package toolguard

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ginkida/toolguard/policy"
	"github.com/ginkida/toolguard/security"
)

// PolicyLoader provides the active policy document. *policy.Store is the
// production implementation; tests inject failing loaders to exercise the
// fail-safe path.
type PolicyLoader interface {
	Load(useCache bool) (*policy.Document, error)
	ResetCache()
}

// Engine composes mode resolution, the circuit breaker, agent trust,
// structural safety analysis and policy pattern matching into a single
// approve/deny verdict per request. All engine state is owned here and
// guarded by its own locks; there is no package-level mutable state.
type Engine struct {
	cfg      Config
	loader   PolicyLoader
	breaker  *CircuitBreaker
	matcher  *policy.Matcher
	commands *security.CommandAnalyzer
	paths    *security.PathAnalyzer
	sink     AuditSink
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithAuditSink sets the audit sink. Defaults to NopSink.
func WithAuditSink(sink AuditSink) EngineOption {
	return func(e *Engine) { e.sink = sink }
}

// WithPolicyLoader replaces the default cascading policy store.
func WithPolicyLoader(loader PolicyLoader) EngineOption {
	return func(e *Engine) { e.loader = loader }
}

// WithCircuitBreaker replaces the default circuit breaker, enabling
// per-session isolation in tests.
func WithCircuitBreaker(breaker *CircuitBreaker) EngineOption {
	return func(e *Engine) { e.breaker = breaker }
}

// NewEngine creates an authorization engine for the given configuration.
func NewEngine(cfg Config, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:      cfg,
		breaker:  NewCircuitBreaker(cfg.threshold()),
		matcher:  policy.NewMatcher(),
		commands: security.NewCommandAnalyzer(),
		paths:    security.NewPathAnalyzer(),
		sink:     NopSink{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.loader == nil {
		var storeOpts []policy.StoreOption
		if cfg.Strict {
			storeOpts = append(storeOpts, policy.WithStrict())
		}
		e.loader = policy.NewStore(cfg.ProjectDir, cfg.PackagedDir, storeOpts...)
	}
	return e
}

// Authorize evaluates one request and returns a fresh Decision. It never
// panics and never returns an error: every internal failure resolves to
// a deny decision carrying the diagnostic in its reason. The final
// decision is always forwarded to the audit sink; sink failures are
// caught and ignored.
func (e *Engine) Authorize(req Request) Decision {
	var decision Decision
	if !e.cfg.Mode.Allows(req.Caller) {
		// Mode short-circuit: policy store, matcher and trust registry
		// are never consulted, and the breaker does not count these.
		decision = e.deny(e.cfg.Mode.denyReason(req.Caller), false, "")
	} else {
		decision = e.evaluate(req)
		if !decision.Approved && e.breaker.RecordDenial() {
			e.emit(NewAuditEvent(AuditCircuitTripped, callerLabel(req.Caller), req.Candidate(),
				fmt.Sprintf("denial threshold of %d reached", e.cfg.threshold())))
		}
	}

	kind := AuditDenial
	if decision.Approved {
		kind = AuditApproval
	}
	e.emit(NewAuditEvent(kind, callerLabel(req.Caller), req.Candidate(), decision.Reason))

	return decision
}

// ResetBreaker restores the circuit breaker to closed. Restoring trust
// is a deliberate action, never incidental.
func (e *Engine) ResetBreaker() {
	e.breaker.Reset()
}

// Breaker exposes the engine's circuit breaker for inspection.
func (e *Engine) Breaker() *CircuitBreaker {
	return e.breaker
}

// InvalidatePolicy drops the cached policy so the next request
// re-resolves the cascade.
func (e *Engine) InvalidatePolicy() {
	e.loader.ResetCache()
}

// evaluate runs steps two through five of the decision order: circuit
// breaker, agent trust, safety analysis, pattern matching. A panic in
// any step resolves to a deny decision (fail safe, never fail open).
func (e *Engine) evaluate(req Request) (decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			decision = e.deny(fmt.Sprintf("internal failure: %v", r), false, "")
		}
	}()

	if e.breaker.Tripped() {
		return e.deny("circuit breaker tripped: auto-approval suspended until explicit reset", false, "")
	}

	doc, err := e.loader.Load(true)
	if err != nil {
		return e.deny(fmt.Sprintf("policy unavailable: %v", err), false, "")
	}

	if req.Caller.Subagent {
		registry := NewTrustRegistry(doc.Agents)
		if !registry.IsTrusted(req.Caller.AgentName) {
			return e.deny(fmt.Sprintf("agent %q is not trusted", req.Caller.AgentName), false, "")
		}
	}

	switch req.Kind {
	case KindBash:
		if analysis := e.commands.Analyze(req.Command); !analysis.Safe {
			return e.deny(analysis.Reason, analysis.Risk, "")
		}
		return e.fromMatch(e.matcher.MatchCommand(req.Command, doc.Bash.Blacklist, doc.Bash.Whitelist))

	case KindRead, KindWrite, KindEdit:
		if analysis := e.paths.Analyze(req.Path); !analysis.Safe {
			return e.deny(analysis.Reason, analysis.Risk, "")
		}
		resolved, err := e.paths.ResolveReal(req.Path)
		if err != nil {
			return e.deny(fmt.Sprintf("path resolution failed: %v", err), false, "")
		}
		return e.fromMatch(e.matcher.MatchPath(resolved, doc.FilePaths.Blacklist, doc.FilePaths.Whitelist))

	default:
		return e.deny(fmt.Sprintf("unsupported action kind %q", req.Kind), false, "")
	}
}

func (e *Engine) fromMatch(res policy.Result) Decision {
	return Decision{
		ID:             uuid.NewString(),
		Approved:       res.Allowed,
		Reason:         res.Reason,
		SecurityRisk:   res.SecurityRisk,
		MatchedPattern: res.Pattern,
	}
}

func (e *Engine) deny(reason string, securityRisk bool, pattern string) Decision {
	return Decision{
		ID:             uuid.NewString(),
		Approved:       false,
		Reason:         reason,
		SecurityRisk:   securityRisk,
		MatchedPattern: pattern,
	}
}

// emit forwards an event to the audit sink, swallowing both errors and
// panics: a broken sink must not alter an already-computed decision.
func (e *Engine) emit(event AuditEvent) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("audit sink panic ignored", "panic", r, "event", string(event.Kind))
		}
	}()

	if err := e.sink.Record(event); err != nil {
		slog.Warn("audit sink failure ignored", "error", err, "event", string(event.Kind))
	}
}

func callerLabel(caller Caller) string {
	if caller.Subagent {
		return caller.AgentName
	}
	return "session"
}
