package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nomis52/gocti/app"
	"github.com/nomis52/gocti/buildinfo"
	"github.com/nomis52/gocti/config"
	"github.com/nomis52/gocti/logging"
	"github.com/nomis52/gocti/metrics"
	"github.com/nomis52/gocti/notify"
)

const flushTimeout = 10 * time.Second

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "gocti",
		Short: "Log calls and sales activities against Freshworks CRM contacts",
		Long: `gocti logs phone calls and sales activities against Freshworks CRM
contacts on behalf of the configured operator.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is fine; CRM_API_KEY may come from the environment or the config.
			if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("loading %s: %w", opts.envFile, err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", getEnv("GOCTI_CONFIG", "config.yaml"), "Configuration file path [env: GOCTI_CONFIG]")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the configuration")

	root.AddCommand(
		newVersionCmd(),
		newValidateCmd(opts),
		newWhoamiCmd(opts),
		newSalesActivityCmd(opts),
		newPhoneCallCmd(opts),
		newContactsCmd(opts),
		newReferenceCmd(opts),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			props := buildinfo.Get()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gocti\n")
			fmt.Fprintf(out, "Built: %s\n", props.BuildTime)
			fmt.Fprintf(out, "Commit: %s\n", props.GitCommit)
		},
	}
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadConfig(opts.configPath); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration validation successful: %s\n", opts.configPath)
			return nil
		},
	}
}

// session holds what a command needs to talk to the CRM.
type session struct {
	cfg        config.Config
	logger     *slog.Logger
	push       *metrics.PushRegistry
	components *app.Components
}

// open loads the configuration and wires the components. Notifications are
// printed to the command's error stream so that stdout carries only results.
func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	s := &session{cfg: cfg, logger: logger}

	var registry metrics.Registry = metrics.Discard
	if cfg.Monitoring.VictoriaMetricsURL != "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("failed to get hostname: %w", err)
		}
		s.push = metrics.NewPushRegistry(metrics.PushConfig{
			URL:      cfg.Monitoring.VictoriaMetricsURL,
			Prefix:   cfg.Monitoring.MetricsPrefix,
			Job:      cfg.Monitoring.JobName,
			Instance: hostname,
		})
		registry = s.push
	}

	s.components, err = app.Build(app.Params{
		Config:   &s.cfg,
		Logger:   logger,
		Sink:     notify.Multi{notify.NewConsoleSink(cmd.ErrOrStderr()), notify.LogSink{Logger: logger}},
		Registry: registry,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// close pushes buffered metrics. A failed push does not fail the command.
func (s *session) close() {
	if s.push == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := s.push.Flush(ctx); err != nil {
		s.logger.Warn("failed to push metrics", "error", err)
	}
}

// withSession runs fn with an open session and closes it afterwards.
func (o *rootOptions) withSession(fn func(cmd *cobra.Command, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := o.open(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		return fn(cmd, s)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
