package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hquan/babytrack/internal/application/tracker"
	"github.com/hquan/babytrack/internal/util"
	"github.com/hquan/babytrack/internal/web"
)

var (
	// Logging related
	debug bool

	// Data path
	dataDir string

	// Server related
	listenAddr string
	timezone   string

	// Profile
	babyName string

	// Insight related
	insightSource   string
	insightEndpoint string

	rootCmd = &cobra.Command{
		Use:   "babytrack [flags]",
		Short: "Single-user baby-care logging service",
		Long: `babytrack records feeding, diaper and sleep events, keeps a feeding
reminder schedule, and serves a local HTTP API for the web UI.

Examples:
  babytrack                                  # Serve on the default address
  babytrack --listen 127.0.0.1:9000          # Serve on a custom address
  babytrack --insight-source remote \
            --insight-endpoint https://api.example.com/v1   # LLM-backed insights
  babytrack status                           # One-shot status report
  babytrack insight                          # Fetch a fresh insight`,
		RunE: runServe,
	}
)

const (
	defaultLogFile = "~/.babytrack/logs/app.log"
	defaultDataDir = "~/.babytrack/data"
	defaultListen  = "127.0.0.1:8394"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", defaultDataDir,
		"Data directory path")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone setting (e.g., Asia/Shanghai, UTC)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&babyName, "name", "",
		"Baby display name used in insights")
	rootCmd.PersistentFlags().StringVar(&insightSource, "insight-source", "canned",
		"Insight source (canned, remote)")
	rootCmd.PersistentFlags().StringVar(&insightEndpoint, "insight-endpoint", "",
		"Base URL of the remote insight endpoint")

	rootCmd.Flags().StringVarP(&listenAddr, "listen", "l", defaultListen,
		"HTTP API listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := setupApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(app, debug)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(ctx, listenAddr)
	}()

	if err := app.Run(ctx); err != nil {
		return err
	}
	return <-errCh
}

// setupApp initializes logging, timezone and the component graph shared by
// all commands.
func setupApp() (*tracker.Orchestrator, error) {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	logFile := expandPath(defaultLogFile)
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	util.InitLogger(logLevel, logFile, debug)

	if err := util.InitializeTimeProvider(timezone); err != nil {
		return nil, err
	}

	config := &tracker.Config{
		DataDir:         expandPath(dataDir),
		Listen:          listenAddr,
		Timezone:        timezone,
		BabyName:        babyName,
		InsightSource:   insightSource,
		InsightEndpoint: insightEndpoint,
		Debug:           debug,
	}

	return tracker.NewOrchestrator(config)
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
