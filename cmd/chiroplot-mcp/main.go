package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"github.com/ironsheep/chiroplot-mcp/internal/config"
	"github.com/ironsheep/chiroplot-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath string
	variant    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "chiroplot-mcp",
	Short: "MCP server for landmark annotation of radiographs",
	Long: `chiroplot-mcp loads a DICOM radiograph, pins named anatomical landmarks
in order, draws the line through them and exports the annotated canvas as
JPEG or PDF.

It communicates via MCP protocol over stdin/stdout. Configure it in your MCP
client (e.g., Claude Desktop).

Environment variables (also read from .env):
  CHIROPLOT_LOG_LEVEL   debug, info, warn or error
  CHIROPLOT_VARIANT     single, comparison or basic
  CHIROPLOT_REGISTRY    YAML file extending the landmark regions
  CHIROPLOT_EXPORT_DIR  directory for exported files`,
	SilenceUsage: true,
	RunE:         run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("chiroplot-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the YAML config file")
	rootCmd.Flags().StringVar(&variant, "variant", "", "workflow variant: single, comparison or basic")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.AddCommand(versionCmd)
}

func run(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if variant != "" {
		cfg.Session.Variant = variant
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.SlogLevel()
	// Configure logging to stderr (stdout is for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	gg.SetLogger(logger.With("component", "gg"))

	logger.Debug("chiroplot-mcp starting", "version", Version, "built", BuildTime, "commit", GitCommit)
	server.Version = Version

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
