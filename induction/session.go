// Package induction implements the dual-scan verification protocol used
// to admit a truck, trailer or driver into the system. Barcode scanners
// occasionally truncate or duplicate characters on marginal reads and
// the underlying formats carry no reliable checksum, so a permanent
// identifier is only accepted after the operator physically re-scans it
// and both reads agree.
package induction

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go-scan-induction/models"
)

// Phase of a scan session.
type Phase string

const (
	PhaseAwaitingFirst  Phase = "awaiting-first"
	PhaseValidating     Phase = "validating"
	PhaseAwaitingSecond Phase = "awaiting-second"
	PhaseVerifying      Phase = "verifying"
	PhaseVerified       Phase = "verified"
	PhaseMismatch       Phase = "mismatch"
	PhaseFailed         Phase = "failed"
)

// Alert kinds surfaced to the operator.
const (
	AlertValidationFailed = "validation-failed"
	AlertMismatch         = "mismatch"
)

// Alert is what the session pushes to the operator-facing sink. The
// operator acknowledges it through Session.Acknowledge before the
// session becomes usable again.
type Alert struct {
	Kind    string
	Message string
}

// AlertSink receives validation failures and mismatches.
type AlertSink interface {
	Notify(alert Alert)
}

// ScanEvent is one capture delivered by the scan event source.
type ScanEvent struct {
	Value     string
	Timestamp time.Time
}

// Config wires a session to its collaborators. Validator is mandatory;
// everything else may be left nil.
type Config struct {
	// Kind of asset being inducted ("truck", "trailer", "driver").
	Kind string

	// Validator runs against the raw first scan.
	Validator ScanValidator

	// Decode optionally turns the first scan into a candidate record
	// carried on the emitted InductionRecord. A decode failure does not
	// fail the induction: plain asset identifiers are not documents.
	Decode func(ctx context.Context, raw string) (*models.ScanResult, error)

	// Alerts receives validation failures and mismatches.
	Alerts AlertSink

	// OnVerified is the output contract: called exactly once, with the
	// immutable record, when the session reaches PhaseVerified.
	OnVerified func(record models.InductionRecord)

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

// Session is the dual-scan verification state machine. One flow owns one
// session; no two flows share state. Events are processed one at a time
// and arrivals during processing coalesce, latest wins.
type Session struct {
	cfg Config

	mu        sync.Mutex
	phase     Phase
	first     string
	candidate *models.ScanResult
	alert     string
	record    *models.InductionRecord

	busy    bool
	pending *ScanEvent

	// gen is bumped by Reset. A validation or verification step captures
	// it before blocking and discards its outcome if it changed, so a
	// reset issued mid-step cannot be undone when the step completes.
	gen uint64
}

// NewSession creates a session in PhaseAwaitingFirst.
func NewSession(cfg Config) *Session {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Session{
		cfg:   cfg,
		phase: PhaseAwaitingFirst,
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// AlertMessage returns the message of the alert awaiting acknowledgment,
// if any.
func (s *Session) AlertMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alert
}

// Record returns the emitted record once the session is verified.
func (s *Session) Record() *models.InductionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// HandleScan feeds one scan event into the machine. While a validation
// or verification step is in flight, the latest arriving event replaces
// any previously pending one; a human operator scans far slower than a
// decode completes, so a queue would only replay stale reads.
func (s *Session) HandleScan(ctx context.Context, event ScanEvent) {
	s.mu.Lock()
	if s.busy {
		s.pending = &event
		s.mu.Unlock()
		return
	}
	s.busy = true
	s.mu.Unlock()

	for {
		s.process(ctx, event)

		s.mu.Lock()
		if s.pending == nil {
			s.busy = false
			s.mu.Unlock()
			return
		}
		event = *s.pending
		s.pending = nil
		s.mu.Unlock()
	}
}

func (s *Session) process(ctx context.Context, event ScanEvent) {
	switch s.Phase() {
	case PhaseAwaitingFirst:
		s.validateFirst(ctx, event)
	case PhaseAwaitingSecond:
		s.verifySecond(event)
	default:
		// Terminal, mid-step or awaiting acknowledgment: drop the event.
		slog.Debug("scan event ignored", "phase", s.Phase(), "kind", s.cfg.Kind)
	}
}

func (s *Session) validateFirst(ctx context.Context, event ScanEvent) {
	s.mu.Lock()
	gen := s.gen
	s.phase = PhaseValidating
	s.mu.Unlock()

	if err := s.cfg.Validator.Validate(ctx, event.Value); err != nil {
		slog.Info("first scan rejected", "kind", s.cfg.Kind, "error", err)
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.phase = PhaseFailed
		s.first = ""
		s.candidate = nil
		s.alert = err.Error()
		s.mu.Unlock()
		s.notify(Alert{Kind: AlertValidationFailed, Message: err.Error()})
		return
	}

	var candidate *models.ScanResult
	if s.cfg.Decode != nil {
		result, err := s.cfg.Decode(ctx, event.Value)
		if err != nil {
			slog.Debug("first scan is not a decodable document, inducting identifier only",
				"kind", s.cfg.Kind, "error", err)
		} else {
			candidate = result
		}
	}

	s.mu.Lock()
	if s.gen != gen {
		// The operator reset the session while the validator or decoder
		// was in flight; the outcome belongs to a cancelled scan.
		slog.Debug("discarding validation outcome after reset", "kind", s.cfg.Kind)
		s.mu.Unlock()
		return
	}
	s.phase = PhaseAwaitingSecond
	s.first = event.Value
	s.candidate = candidate
	s.alert = ""
	s.mu.Unlock()
}

func (s *Session) verifySecond(event ScanEvent) {
	s.mu.Lock()
	gen := s.gen
	s.phase = PhaseVerifying
	first := s.first
	candidate := s.candidate
	s.mu.Unlock()

	if NormalizeScan(first) != NormalizeScan(event.Value) {
		slog.Info("scan mismatch, discarding both reads", "kind", s.cfg.Kind)
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.phase = PhaseMismatch
		s.first = ""
		s.candidate = nil
		s.alert = "the two scans do not match, scan the asset again"
		s.mu.Unlock()
		s.notify(Alert{Kind: AlertMismatch, Message: "the two scans do not match"})
		return
	}

	record := models.InductionRecord{
		Identifier: NormalizeScan(first),
		Kind:       s.cfg.Kind,
		Result:     candidate,
		VerifiedAt: s.cfg.Now(),
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseVerified
	s.record = &record
	s.alert = ""
	s.mu.Unlock()

	slog.Info("induction verified", "kind", record.Kind, "identifier", record.Identifier)
	if s.cfg.OnVerified != nil {
		s.cfg.OnVerified(record)
	}
}

// Acknowledge clears a pending validation failure or mismatch and
// returns the session to PhaseAwaitingFirst.
func (s *Session) Acknowledge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseFailed || s.phase == PhaseMismatch {
		s.phase = PhaseAwaitingFirst
		s.alert = ""
	}
}

// Reset returns the session to PhaseAwaitingFirst from any non-terminal
// state, discarding all captured data. Safe to call at any time.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseVerified {
		return
	}
	s.phase = PhaseAwaitingFirst
	s.first = ""
	s.candidate = nil
	s.alert = ""
	s.pending = nil
	s.gen++
}

func (s *Session) notify(alert Alert) {
	if s.cfg.Alerts != nil {
		s.cfg.Alerts.Notify(alert)
	}
}

// NormalizeScan removes every character that is not alphanumeric or '%'
// before comparison, so scanner-injected noise cannot defeat the
// dual-scan check. Idempotent.
func NormalizeScan(raw string) string {
	out := make([]rune, 0, len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '%':
		default:
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
