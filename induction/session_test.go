package induction

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-scan-induction/models"

	"github.com/stretchr/testify/require"
)

// 16 %-delimited fields, the shape a truck induction scan has.
const testDiskScan = "NT123%ABC%1%2%3%DSK%LIC%REG%DESC%MAKE%MODEL%COLOUR%VIN%ENG%2030-01-01%X"

type recordingAlertSink struct {
	mu     sync.Mutex
	alerts []Alert
}

func (s *recordingAlertSink) Notify(alert Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
}

func (s *recordingAlertSink) last() *Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.alerts) == 0 {
		return nil
	}
	return &s.alerts[len(s.alerts)-1]
}

func passingValidator() ScanValidator {
	return ScanValidatorFunc(func(ctx context.Context, raw string) error {
		return nil
	})
}

func scan(value string) ScanEvent {
	return ScanEvent{Value: value, Timestamp: time.Now()}
}

func TestSessionStartsAwaitingFirst(t *testing.T) {
	session := NewSession(Config{Kind: "truck", Validator: passingValidator()})
	require.Equal(t, PhaseAwaitingFirst, session.Phase())
	require.Nil(t, session.Record())
}

func TestDualScanHappyPath(t *testing.T) {
	var emitted *models.InductionRecord
	session := NewSession(Config{
		Kind:      "truck",
		Validator: passingValidator(),
		OnVerified: func(record models.InductionRecord) {
			emitted = &record
		},
	})

	session.HandleScan(context.Background(), scan(testDiskScan))
	require.Equal(t, PhaseAwaitingSecond, session.Phase())

	// The re-scan picked up a trailing space; normalization absorbs it.
	session.HandleScan(context.Background(), scan(testDiskScan+" "))
	require.Equal(t, PhaseVerified, session.Phase())

	require.NotNil(t, emitted)
	require.Equal(t, NormalizeScan(testDiskScan), emitted.Identifier)
	require.NotContains(t, emitted.Identifier, " ")
	require.Equal(t, "truck", emitted.Kind)
	require.Equal(t, emitted, session.Record())
}

func TestDualScanMismatchResets(t *testing.T) {
	alerts := &recordingAlertSink{}
	session := NewSession(Config{
		Kind:      "trailer",
		Validator: passingValidator(),
		Alerts:    alerts,
	})

	session.HandleScan(context.Background(), scan(testDiskScan))
	require.Equal(t, PhaseAwaitingSecond, session.Phase())

	// One character differs: marginal read.
	session.HandleScan(context.Background(), scan(testDiskScan+"9"))
	require.Equal(t, PhaseMismatch, session.Phase())
	require.NotEmpty(t, session.AlertMessage())

	last := alerts.last()
	require.NotNil(t, last)
	require.Equal(t, AlertMismatch, last.Kind)

	session.Acknowledge()
	require.Equal(t, PhaseAwaitingFirst, session.Phase())
	require.Empty(t, session.AlertMessage())

	// Both prior scans were discarded: a fresh, different pair verifies.
	session.HandleScan(context.Background(), scan("NT999%NEW%SCAN"))
	require.Equal(t, PhaseAwaitingSecond, session.Phase())
	session.HandleScan(context.Background(), scan("NT999%NEW%SCAN"))
	require.Equal(t, PhaseVerified, session.Phase())
	require.Equal(t, "NT999%NEW%SCAN", session.Record().Identifier)
}

func TestFirstScanValidationFailure(t *testing.T) {
	alerts := &recordingAlertSink{}
	session := NewSession(Config{
		Kind: "truck",
		Validator: ScanValidatorFunc(func(ctx context.Context, raw string) error {
			return fmt.Errorf("%w: %s", ErrIdentifierTaken, NormalizeScan(raw))
		}),
		Alerts: alerts,
	})

	session.HandleScan(context.Background(), scan(testDiskScan))

	require.Equal(t, PhaseFailed, session.Phase())
	require.Contains(t, session.AlertMessage(), "already assigned")

	last := alerts.last()
	require.NotNil(t, last)
	require.Equal(t, AlertValidationFailed, last.Kind)

	// Never reached AwaitingSecond: a further scan is ignored until ack.
	session.HandleScan(context.Background(), scan(testDiskScan))
	require.Equal(t, PhaseFailed, session.Phase())

	session.Acknowledge()
	require.Equal(t, PhaseAwaitingFirst, session.Phase())
	require.Empty(t, session.AlertMessage())
}

func TestCandidateRecordRidesAlong(t *testing.T) {
	session := NewSession(Config{
		Kind:      "driver",
		Validator: passingValidator(),
		Decode: func(ctx context.Context, raw string) (*models.ScanResult, error) {
			return &models.ScanResult{
				Class:  "legacy-numeric-id",
				Person: &models.PersonRecord{IDNumber: "8003155009087"},
			}, nil
		},
	})

	session.HandleScan(context.Background(), scan("8003155009087"))
	session.HandleScan(context.Background(), scan("8003155009087"))

	record := session.Record()
	require.NotNil(t, record)
	require.NotNil(t, record.Result)
	require.Equal(t, "8003155009087", record.Result.Person.IDNumber)
}

func TestUndecodableFirstScanStillInducts(t *testing.T) {
	session := NewSession(Config{
		Kind:      "trailer",
		Validator: passingValidator(),
		Decode: func(ctx context.Context, raw string) (*models.ScanResult, error) {
			return nil, fmt.Errorf("unrecognized document format")
		},
	})

	session.HandleScan(context.Background(), scan("TR-0042"))
	require.Equal(t, PhaseAwaitingSecond, session.Phase())

	session.HandleScan(context.Background(), scan("TR-0042"))
	require.Equal(t, PhaseVerified, session.Phase())
	require.Equal(t, "TR0042", session.Record().Identifier)
	require.Nil(t, session.Record().Result)
}

func TestResetFromAnyNonTerminalState(t *testing.T) {
	t.Run("from awaiting second", func(t *testing.T) {
		session := NewSession(Config{Kind: "truck", Validator: passingValidator()})
		session.HandleScan(context.Background(), scan(testDiskScan))
		require.Equal(t, PhaseAwaitingSecond, session.Phase())

		session.Reset()
		require.Equal(t, PhaseAwaitingFirst, session.Phase())
	})

	t.Run("from mismatch", func(t *testing.T) {
		session := NewSession(Config{Kind: "truck", Validator: passingValidator()})
		session.HandleScan(context.Background(), scan(testDiskScan))
		session.HandleScan(context.Background(), scan("completely different"))
		require.Equal(t, PhaseMismatch, session.Phase())

		session.Reset()
		require.Equal(t, PhaseAwaitingFirst, session.Phase())
		require.Empty(t, session.AlertMessage())
	})

	t.Run("verified is terminal", func(t *testing.T) {
		session := NewSession(Config{Kind: "truck", Validator: passingValidator()})
		session.HandleScan(context.Background(), scan(testDiskScan))
		session.HandleScan(context.Background(), scan(testDiskScan))
		require.Equal(t, PhaseVerified, session.Phase())

		session.Reset()
		require.Equal(t, PhaseVerified, session.Phase())
		require.NotNil(t, session.Record())
	})
}

func TestEventsCoalesceWhileValidating(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)

	session := NewSession(Config{
		Kind: "truck",
		Validator: ScanValidatorFunc(func(ctx context.Context, raw string) error {
			started <- struct{}{}
			<-block
			return nil
		}),
	})

	done := make(chan struct{})
	go func() {
		session.HandleScan(context.Background(), scan("FIRST%SCAN"))
		close(done)
	}()
	<-started

	// Three scans arrive while validation is in flight; only the last
	// survives and becomes the second scan.
	session.HandleScan(context.Background(), scan("stale-1"))
	session.HandleScan(context.Background(), scan("stale-2"))
	session.HandleScan(context.Background(), scan("FIRST%SCAN"))

	close(block)
	<-done

	require.Equal(t, PhaseVerified, session.Phase())
	require.Equal(t, "FIRST%SCAN", session.Record().Identifier)
}

func TestResetDuringValidationDiscardsOutcome(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)

	session := NewSession(Config{
		Kind: "truck",
		Validator: ScanValidatorFunc(func(ctx context.Context, raw string) error {
			started <- struct{}{}
			<-block
			return nil
		}),
	})

	done := make(chan struct{})
	go func() {
		session.HandleScan(context.Background(), scan(testDiskScan))
		close(done)
	}()
	<-started

	// The operator cancels while the uniqueness check is still running.
	session.Reset()
	require.Equal(t, PhaseAwaitingFirst, session.Phase())

	close(block)
	<-done

	// The completed validation must not revive the cancelled scan.
	require.Equal(t, PhaseAwaitingFirst, session.Phase())

	// And the session is fully usable afterwards.
	session.HandleScan(context.Background(), scan("NT777%FRESH"))
	require.Equal(t, PhaseAwaitingSecond, session.Phase())
	session.HandleScan(context.Background(), scan("NT777%FRESH"))
	require.Equal(t, PhaseVerified, session.Phase())
	require.Equal(t, "NT777%FRESH", session.Record().Identifier)
}

func TestResetDuringValidationSuppressesFailureAlert(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)
	alerts := &recordingAlertSink{}

	session := NewSession(Config{
		Kind: "truck",
		Validator: ScanValidatorFunc(func(ctx context.Context, raw string) error {
			started <- struct{}{}
			<-block
			return ErrIdentifierTaken
		}),
		Alerts: alerts,
	})

	done := make(chan struct{})
	go func() {
		session.HandleScan(context.Background(), scan(testDiskScan))
		close(done)
	}()
	<-started

	session.Reset()
	close(block)
	<-done

	// The rejection belongs to the cancelled scan: no failed phase, no
	// alert for the operator to acknowledge.
	require.Equal(t, PhaseAwaitingFirst, session.Phase())
	require.Empty(t, session.AlertMessage())
	require.Nil(t, alerts.last())
}

func TestNormalizeScan(t *testing.T) {
	t.Run("strips non-alphanumerics except percent", func(t *testing.T) {
		require.Equal(t, "NT123%ABC", NormalizeScan("NT-123 %ABC\r\n"))
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{testDiskScan, "NT-123 %ABC\r\n", "", "***", "plain"}
		for _, input := range inputs {
			once := NormalizeScan(input)
			require.Equal(t, once, NormalizeScan(once))
		}
	})

	t.Run("scanner noise does not defeat comparison", func(t *testing.T) {
		require.Equal(t, NormalizeScan("NT123%ABC"), NormalizeScan("NT123%ABC\t "))
	})
}
