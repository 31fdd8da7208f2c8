package patterns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

const defaultScanConcurrency = 3

// DetectorFailure records a detector that errored during a scan.
type DetectorFailure struct {
	PatternName string `json:"pattern_name"`
	Error       string `json:"error"`
}

// ScanReport is the outcome of a batch scan.
type ScanReport struct {
	Patterns []PatternResult   `json:"patterns"`
	Failures []DetectorFailure `json:"failed_patterns,omitempty"`
}

// Scanner runs detectors concurrently.
type Scanner struct {
	detectors   []Detector
	concurrency int
}

func NewScanner(detectors ...Detector) *Scanner {
	return &Scanner{detectors: detectors, concurrency: defaultScanConcurrency}
}

// WithConcurrency bounds the number of detectors querying at once. n <= 0 removes the bound.
func (s *Scanner) WithConcurrency(n int) *Scanner {
	s.concurrency = n
	return s
}

func (s *Scanner) Detectors() []Detector {
	return s.detectors
}

// Scan runs every detector. A failing detector is logged and reported in Failures,
// and detectors with no matches are omitted. Results keep detector order.
// Scan fails when the context is cancelled or when every detector failed.
func (s *Scanner) Scan(ctx context.Context) (*ScanReport, error) {
	results := make([]*PatternResult, len(s.detectors))
	errs := make([]error, len(s.detectors))

	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, d := range s.detectors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := d.Detect(ctx)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pattern scan interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pattern scan interrupted: %w", err)
	}

	report := &ScanReport{Patterns: make([]PatternResult, 0, len(s.detectors))}
	for i, d := range s.detectors {
		if errs[i] != nil {
			slog.Warn("pattern detector failed", "pattern", d.Name(), "error", errs[i])
			report.Failures = append(report.Failures, DetectorFailure{PatternName: d.Name(), Error: errs[i].Error()})
			continue
		}
		if results[i] != nil && len(results[i].Cases) > 0 {
			report.Patterns = append(report.Patterns, *results[i])
		}
	}

	if len(s.detectors) > 0 && len(report.Failures) == len(s.detectors) {
		return nil, fmt.Errorf("all %d pattern detectors failed: %w", len(s.detectors), errors.Join(errs...))
	}

	slog.Info("pattern scan completed", "patterns", len(report.Patterns), "failed", len(report.Failures))
	return report, nil
}
