package toolguard

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/ginkida/toolguard/security"
)

const (
	auditFileMode = 0o644
	auditDirMode  = 0o755
)

// AuditEventKind classifies audit events.
type AuditEventKind string

const (
	// AuditApproval records a request approved for auto-execution.
	AuditApproval AuditEventKind = "approval"
	// AuditDenial records a refused request.
	AuditDenial AuditEventKind = "denial"
	// AuditCircuitTripped records the breaker transitioning to tripped.
	AuditCircuitTripped AuditEventKind = "circuit_breaker_tripped"
)

// AuditEvent is one audit record.
type AuditEvent struct {
	ID        string         `json:"id"`
	Time      time.Time      `json:"time"`
	Kind      AuditEventKind `json:"kind"`
	Agent     string         `json:"agent,omitempty"`
	Candidate string         `json:"candidate,omitempty"`
	Reason    string         `json:"reason,omitempty"`

	// PrevHash and Hash chain events so a tampered or truncated log is
	// detectable. Hash covers the event payload plus PrevHash.
	PrevHash string `json:"prev_hash,omitempty"`
	Hash     string `json:"hash,omitempty"`
}

// AuditSink receives every final decision and breaker trip. Sinks are
// external collaborators: the engine catches and ignores their failures,
// so a broken sink can never alter an already-computed decision.
type AuditSink interface {
	Record(event AuditEvent) error
}

// NopSink discards all events.
type NopSink struct{}

// Record implements AuditSink.
func (NopSink) Record(AuditEvent) error { return nil }

// NewAuditEvent builds an event with a fresh ID and timestamp.
func NewAuditEvent(kind AuditEventKind, agent, candidate, reason string) AuditEvent {
	return AuditEvent{
		ID:        uuid.NewString(),
		Time:      time.Now().UTC(),
		Kind:      kind,
		Agent:     agent,
		Candidate: candidate,
		Reason:    reason,
	}
}

// JSONLSink appends audit events to a file, one JSON object per line.
// Candidate strings are redacted before writing, and events carry a
// blake2b hash chain for tamper evidence.
type JSONLSink struct {
	path     string
	redactor *security.Redactor

	mu       sync.Mutex
	prevHash string
}

// NewJSONLSink creates an append-only JSONL sink at path.
func NewJSONLSink(path string) *JSONLSink {
	return &JSONLSink{
		path:     path,
		redactor: security.NewRedactor(),
	}
}

// Record implements AuditSink.
func (s *JSONLSink) Record(event AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.Candidate = s.redactor.Redact(event.Candidate)
	event.PrevHash = s.prevHash
	event.Hash = chainHash(event)

	encoded, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	encoded = append(encoded, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), auditDirMode); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, auditFileMode)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(encoded); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}

	s.prevHash = event.Hash
	return nil
}

// chainHash computes the blake2b-256 digest of an event's payload fields
// plus the previous event's hash.
func chainHash(event AuditEvent) string {
	sum := blake2b.Sum256([]byte(
		event.PrevHash + "\x00" +
			event.ID + "\x00" +
			event.Time.Format(time.RFC3339Nano) + "\x00" +
			string(event.Kind) + "\x00" +
			event.Agent + "\x00" +
			event.Candidate + "\x00" +
			event.Reason,
	))
	return hex.EncodeToString(sum[:])
}

// VerifyChain re-computes the hash chain over events in order and
// reports the index of the first mismatch, or -1 when intact.
func VerifyChain(events []AuditEvent) int {
	prev := ""
	for i, event := range events {
		if event.PrevHash != prev {
			return i
		}
		if chainHash(event) != event.Hash {
			return i
		}
		prev = event.Hash
	}
	return -1
}
