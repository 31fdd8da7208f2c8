package patterns

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	name   string
	result *PatternResult
	err    error
	calls  atomic.Int32
}

func (s *stubDetector) Name() string        { return s.name }
func (s *stubDetector) Risk() Severity      { return SeverityHigh }
func (s *stubDetector) Description() string { return s.name }

func (s *stubDetector) Detect(ctx context.Context) (*PatternResult, error) {
	s.calls.Add(1)
	return s.result, s.err
}

func hit(name string) *PatternResult {
	return &PatternResult{PatternName: name, RiskLevel: SeverityHigh, Cases: []any{CollusionCase{AgentID: "A1"}}}
}

func TestScan(t *testing.T) {
	t.Run("keeps detector order and omits empty results", func(t *testing.T) {
		first := &stubDetector{name: "first", result: hit("first")}
		empty := &stubDetector{name: "empty"}
		third := &stubDetector{name: "third", result: hit("third")}

		report, err := NewScanner(first, empty, third).Scan(context.Background())
		require.NoError(t, err)

		require.Len(t, report.Patterns, 2)
		assert.Equal(t, "first", report.Patterns[0].PatternName)
		assert.Equal(t, "third", report.Patterns[1].PatternName)
		assert.Empty(t, report.Failures)
	})

	t.Run("failing detector is reported and omitted", func(t *testing.T) {
		ok := &stubDetector{name: "ok", result: hit("ok")}
		broken := &stubDetector{name: "broken", err: errors.New("query timed out")}

		report, err := NewScanner(ok, broken).Scan(context.Background())
		require.NoError(t, err)

		require.Len(t, report.Patterns, 1)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, "broken", report.Failures[0].PatternName)
		assert.Contains(t, report.Failures[0].Error, "timed out")
	})

	t.Run("all detectors failing is an error", func(t *testing.T) {
		a := &stubDetector{name: "a", err: errors.New("down")}
		b := &stubDetector{name: "b", err: errors.New("down")}

		_, err := NewScanner(a, b).Scan(context.Background())
		assert.ErrorContains(t, err, "all 2 pattern detectors failed")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		d := &stubDetector{name: "d", result: hit("d")}
		_, err := NewScanner(d).Scan(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unbounded concurrency runs every detector", func(t *testing.T) {
		detectors := make([]Detector, 0, 6)
		stubs := make([]*stubDetector, 0, 6)
		for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
			s := &stubDetector{name: name, result: hit(name)}
			stubs = append(stubs, s)
			detectors = append(detectors, s)
		}

		report, err := NewScanner(detectors...).WithConcurrency(0).Scan(context.Background())
		require.NoError(t, err)
		assert.Len(t, report.Patterns, 6)
		for _, s := range stubs {
			assert.Equal(t, int32(1), s.calls.Load())
		}
	})

	t.Run("no detectors", func(t *testing.T) {
		report, err := NewScanner().Scan(context.Background())
		require.NoError(t, err)
		assert.Empty(t, report.Patterns)
	})
}
