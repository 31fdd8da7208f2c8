package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/claims"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the fraud tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))
			a.serveMetrics(ctx)

			srv := server.NewNeo4jMCPServer(version, opts.cfg, a.db, a.analytics, a.fraud)
			return srv.Start(ctx)
		},
	}
}

func newBootstrapCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the uniqueness constraints the merge keys rely on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.ReadOnly {
				return errors.New("bootstrap is disabled in read-only mode")
			}
			ctx, cancel := opts.commandContext(cmd)
			defer cancel()

			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			if err := a.fraud.Bootstrap(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "constraints ready")
			return nil
		},
	}
}

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var (
		file  string
		check bool
	)
	cmd := &cobra.Command{
		Use:   "ingest --file claims.json|claims.csv",
		Short: "Merge claims into the graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.ReadOnly {
				return errors.New("ingest is disabled in read-only mode")
			}
			recs, rejected, err := loadRecords(file)
			if err != nil {
				return err
			}

			ctx, cancel := opts.commandContext(cmd)
			defer cancel()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			if !check {
				result := a.fraud.IngestBatch(ctx, recs)
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"ingest":   result,
					"rejected": rejected,
				})
			}

			results := make([]any, 0, len(recs))
			for _, rec := range recs {
				res, err := a.fraud.IngestAndCheck(ctx, rec)
				if err != nil {
					results = append(results, map[string]any{"transaction_id": rec.TransactionID, "error": err.Error()})
					continue
				}
				results = append(results, res)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"results":  results,
				"rejected": rejected,
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON or CSV claims file")
	cmd.Flags().BoolVar(&check, "check", false, "run the fraud check after each claim is merged")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "check [transaction_id]",
		Short: "Score a stored claim, or the claims in a file, against the fraud rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (file == "") {
				return errors.New("provide exactly one of a transaction id or --file")
			}

			ctx, cancel := opts.commandContext(cmd)
			defer cancel()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			if len(args) == 1 {
				result, err := a.fraud.CheckByID(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			}

			recs, rejected, err := loadRecords(file)
			if err != nil {
				return err
			}
			results := make(map[string]any, len(recs))
			for _, rec := range recs {
				result, err := a.fraud.Check(ctx, rec)
				if err != nil {
					return fmt.Errorf("check of claim %s failed: %w", rec.TransactionID, err)
				}
				results[rec.TransactionID] = result
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"results":  results,
				"rejected": rejected,
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON or CSV claims file")
	return cmd
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	var pattern string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run the batch fraud pattern detectors over the whole graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.commandContext(cmd)
			defer cancel()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			if pattern != "" {
				result, err := a.fraud.DetectPattern(ctx, pattern)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			}

			result, err := a.fraud.Scan(ctx)
			if err != nil {
				return err
			}
			for _, failure := range result.FailedPatterns {
				slog.Warn("pattern detector failed", "pattern", failure.PatternName, "error", failure.Error)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "", "run a single detector by name")
	return cmd
}

func newEvaluateCmd(opts *rootOptions) *cobra.Command {
	var sampleSize int
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Check a random sample of stored claims and summarise the outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sampleSize <= 0 {
				return fmt.Errorf("--sample-size must be positive, got %d", sampleSize)
			}

			ctx, cancel := opts.commandContext(cmd)
			defer cancel()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			result, err := a.fraud.Evaluate(ctx, sampleSize)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().IntVar(&sampleSize, "sample-size", fraud.DefaultEvaluationSample,
		fmt.Sprintf("number of claims to check, at most %d", fraud.MaxEvaluationSample))
	return cmd
}

func newGraphCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "graph <transaction_id>",
		Short: "Print the neighborhood of a claim as nodes and edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.commandContext(cmd)
			defer cancel()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			graph, err := a.fraud.Graph(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), graph)
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print entity counts and the fraud dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.commandContext(cmd)
			defer cancel()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			stats, err := a.fraud.Stats(ctx)
			if err != nil {
				return err
			}
			dashboard, err := a.fraud.Dashboard(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"stats":     stats,
				"dashboard": dashboard,
			})
		},
	}
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "analyze --file claims.json",
		Short: "Combine the graph check with a language model review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, rejected, err := loadRecords(file)
			if err != nil {
				return err
			}

			ctx, cancel := opts.commandContext(cmd)
			defer cancel()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))
			if !a.fraud.HasAnalyzer() {
				return errors.New("narrative analysis needs OPENAI_API_KEY")
			}

			results := make(map[string]any, len(recs))
			for _, rec := range recs {
				result, err := a.fraud.Analyze(ctx, rec)
				if err != nil {
					return fmt.Errorf("analysis of claim %s failed: %w", rec.TransactionID, err)
				}
				results[rec.TransactionID] = result
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"results":  results,
				"rejected": rejected,
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON or CSV claims file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// rejectedClaim is a payload that could not be normalized into a record.
type rejectedClaim struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// loadRecords decodes and normalizes a claims file. Payloads that fail
// normalization are returned as rejections rather than failing the file.
func loadRecords(path string) ([]claims.Record, []rejectedClaim, error) {
	payloads, err := claims.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	recs := make([]claims.Record, 0, len(payloads))
	var rejected []rejectedClaim
	for i, payload := range payloads {
		rec, err := claims.FromMap(payload)
		if err != nil {
			rejected = append(rejected, rejectedClaim{Index: i, Error: err.Error()})
			continue
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return nil, rejected, fmt.Errorf("no valid claims in %s", path)
	}
	return recs, rejected, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
