package main

import (
	"context"
	"os"
	"time"

	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/config"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/logger"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/dynamic"
	guides "github.com/mkd-neo4j/neo4j-claims-fraud/tools"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	uri       string
	username  string
	password  string
	database  string
	readOnly  bool
	logLevel  string
	logFormat string
	timeout   time.Duration

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&rootOptions{})
}

func newRootCmdWith(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "claimgraph",
		Short:        "Insurance claims fraud detection on a Neo4j graph",
		Long:         "claimgraph loads insurance claims into Neo4j, checks them against graph fraud rules and serves the same operations as MCP tools.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			// stdout carries MCP traffic and command output
			logger.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			dynamic.EmbeddedFS = guides.ConfigFiles
			opts.cfg = cfg
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.uri, "uri", "", "Neo4j URI (overrides NEO4J_URI)")
	flags.StringVar(&opts.username, "username", "", "Neo4j user (overrides NEO4J_USERNAME)")
	flags.StringVar(&opts.password, "password", "", "Neo4j password (overrides NEO4J_PASSWORD)")
	flags.StringVar(&opts.database, "database", "", "Neo4j database (overrides NEO4J_DATABASE)")
	flags.BoolVar(&opts.readOnly, "read-only", false, "hide write tools and refuse writes (overrides NEO4J_READ_ONLY)")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", "", "text or json (overrides LOG_FORMAT)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-command timeout (overrides CLAIMGRAPH_TIMEOUT)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newBootstrapCmd(opts),
		newIngestCmd(opts),
		newCheckCmd(opts),
		newScanCmd(opts),
		newEvaluateCmd(opts),
		newGraphCmd(opts),
		newStatsCmd(opts),
		newAnalyzeCmd(opts),
	)
	return rootCmd
}

// apply copies explicitly set flags over the environment configuration.
func (o *rootOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("uri") {
		cfg.URI = o.uri
	}
	if flags.Changed("username") {
		cfg.Username = o.username
	}
	if flags.Changed("password") {
		cfg.Password = o.password
	}
	if flags.Changed("database") {
		cfg.Database = o.database
	}
	if flags.Changed("read-only") {
		cfg.ReadOnly = o.readOnly
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
}

// commandContext bounds a one-shot command by the configured timeout.
func (o *rootOptions) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.cfg.Timeout)
}
