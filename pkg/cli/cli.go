// Package cli builds the ycsb-ravendb command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	binding "github.com/nimburion/ycsb-ravendb/pkg/binding/ravendb"
	"github.com/nimburion/ycsb-ravendb/pkg/config"
	"github.com/nimburion/ycsb-ravendb/pkg/health"
	"github.com/nimburion/ycsb-ravendb/pkg/observability/logger"
	"github.com/nimburion/ycsb-ravendb/pkg/observability/metrics"
	store "github.com/nimburion/ycsb-ravendb/pkg/store/ravendb"
	"github.com/nimburion/ycsb-ravendb/pkg/version"
	"github.com/nimburion/ycsb-ravendb/pkg/workload"
	"github.com/nimburion/ycsb-ravendb/pkg/ycsb"
)

const serviceName = "ycsb-ravendb"

// NewRootCommand creates the CLI with load, run, check, and version
// subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Key-value benchmark driver for RavenDB 3.5",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var cfgPath string
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config-file", "c", "", "config file path")
	rootCmd.PersistentFlags().String("url", "", "RavenDB server URL")
	rootCmd.PersistentFlags().String("table", "", "table name passed to the binding")
	rootCmd.PersistentFlags().Int("threads", 0, "worker goroutine count")
	rootCmd.PersistentFlags().Int("record-count", 0, "records to load / key range for run")
	rootCmd.PersistentFlags().Int("operation-count", 0, "operations to execute in the run phase")
	rootCmd.PersistentFlags().Int("target", 0, "target operations/second, 0 for unthrottled")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newLoadCommand(&cfgPath),
		newRunCommand(&cfgPath),
		newCheckCommand(&cfgPath),
		newVersionCommand(),
	)
	return rootCmd
}

func newLoadCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Insert the configured record set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhase(cmd, *cfgPath, func(ctx context.Context, r *workload.Runner, props ycsb.Properties) (*workload.Result, error) {
				return r.Load(ctx, props)
			})
		},
	}
}

func newRunCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute the configured operation mix",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhase(cmd, *cfgPath, func(ctx context.Context, r *workload.Runner, props ycsb.Properties) (*workload.Result, error) {
				return r.Run(ctx, props)
			})
		},
	}
}

func newCheckCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to the configured RavenDB server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, *cfgPath)
			if err != nil {
				return err
			}

			adapter, err := store.NewAdapter(store.Config{
				URL:              cfg.RavenDB.URL,
				Database:         "YCSB",
				OperationTimeout: cfg.RavenDB.OperationTimeout,
			}, log)
			if err != nil {
				return fmt.Errorf("failed to reach ravendb: %w", err)
			}
			defer adapter.Close()

			registry := health.NewRegistry()
			registry.Register(health.NewAdapterChecker("ravendb", adapter, cfg.RavenDB.OperationTimeout))

			ctx, cancel := signalContext()
			defer cancel()

			result := registry.Check(ctx)
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if !result.IsHealthy() {
				return fmt.Errorf("ravendb is unhealthy")
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Current(serviceName).String())
		},
	}
}

// runPhase wires config, logger, metrics, binding factory and runner
// together and executes one workload phase.
func runPhase(cmd *cobra.Command, cfgPath string, phase func(context.Context, *workload.Runner, ycsb.Properties) (*workload.Result, error)) error {
	cfg, log, err := setup(cmd, cfgPath)
	if err != nil {
		return err
	}

	registry := metrics.NewRegistry()

	factory := func() ycsb.DB { return binding.New(log) }
	runner := workload.NewRunner(workload.Config{
		Table:            cfg.Workload.Table,
		RecordCount:      cfg.Workload.RecordCount,
		OperationCount:   cfg.Workload.OperationCount,
		Threads:          cfg.Workload.Threads,
		FieldCount:       cfg.Workload.FieldCount,
		FieldLength:      cfg.Workload.FieldLength,
		ReadProportion:   cfg.Workload.ReadProportion,
		InsertProportion: cfg.Workload.InsertProportion,
		DeleteProportion: cfg.Workload.DeleteProportion,
		TargetOPS:        cfg.Workload.TargetOPS,
	}, factory, log)

	ctx, cancel := signalContext()
	defer cancel()

	result, err := phase(ctx, runner, ycsb.Properties(cfg.BindingProperties()))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.String())
	printOperationMetrics(cmd, registry)
	return nil
}

// printOperationMetrics appends per-operation totals from the Prometheus
// registry to the phase summary.
func printOperationMetrics(cmd *cobra.Command, registry *metrics.Registry) {
	families, err := registry.Gather()
	if err != nil {
		return
	}
	for _, f := range families {
		if f.GetName() != "ycsb_operations_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s/%s: %d\n",
				labels["operation"], labels["status"], int64(m.GetCounter().GetValue()))
		}
	}
}

// setup loads configuration (flags > env > file > defaults) and builds the
// logger.
func setup(cmd *cobra.Command, cfgPath string) (*config.Config, logger.Logger, error) {
	loader := config.NewViperLoader(cfgPath, "YCSB").WithFlags(cmd.Flags())
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}

	level, err := logger.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	format, err := logger.ParseLogFormat(cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.NewZapLogger(logger.Config{Level: level, Format: format})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}
	return 0
}
