package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/gopdfctl/config"
	"github.com/s0up4200/gopdfctl/gopdf"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *gopdf.Client
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gopdfctl",
	Short: "Convert web pages and HTML to PDF with the GoPdf API",
	Long: `gopdfctl is a CLI for the GoPdf conversion API. It converts a URL or raw
HTML into a PDF, either downloading the document or asking the service to
host it, and can run whole batches of conversions from a manifest.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// initializeApp loads the configuration and creates the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	timeout, err := cfg.API.TimeoutDuration()
	if err != nil {
		return err
	}

	client, err = gopdf.NewClient(cfg.API.Key, logger,
		gopdf.WithBaseURL(cfg.API.BaseURL),
		gopdf.WithTimeout(timeout),
		gopdf.WithUserAgent(cfg.API.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("failed to create GoPdf client: %w", err)
	}

	logger.Debug().Str("base_url", client.BaseURL()).Msg("GoPdf client ready")
	return nil
}

// initializeLogging is used by commands that never talk to the API, so the
// config file is read but no API key is required.
func initializeLogging(cmd *cobra.Command, args []string) error {
	loaded, err := config.Read(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.ValidateLogging(loaded.Logging); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	logger = setupLogger(cfg.Logging)
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
