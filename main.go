package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"eventplanner-web/internal/config"
)

var (
	cfgFile     string
	apiURL      string
	sessionFile string
	jsonOut     bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "eventplanner",
	Short: "Plan events, invite people and track who is coming",
	Long: `eventplanner is a client for the events API.

Run the web front-end:
  eventplanner serve

Or work from the terminal:
  eventplanner login --email ann@example.com
  eventplanner events list --tab invited
  eventplanner events create --title "Picnic" --date 2025-06-01 --time 12:00 --location Park --description "Bring food"`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web front-end",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "events API base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "session file used by the CLI")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print JSON instead of tables")

	serveCmd.Flags().String("addr", "", "listen address (overrides server.address and server.port)")

	rootCmd.AddCommand(serveCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	config.LoadEnv()

	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if apiURL != "" {
		loaded.API.BaseURL = apiURL
	}
	if sessionFile != "" {
		loaded.Session.File = sessionFile
	}

	cfg = loaded
	logger = newLogger(cmd.ErrOrStderr(), cfg.Log)
	slog.SetDefault(logger)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Session.Secret == config.DefaultSecret {
		logger.Warn("session.secret is not set, using the built-in development secret")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := InitSessionBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("close session backend", slog.String("error", err.Error()))
		}
	}()

	tmpl, err := loadTemplates()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(CORSMiddleware(cfg.Server.CORSOrigins))

	SetupRoutes(r, NewApp(cfg, logger, backend.KV), tmpl)

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", slog.String("addr", addr), slog.String("api", cfg.API.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
