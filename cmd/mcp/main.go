package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"clickup-mcp/internal/application/service"
	"clickup-mcp/internal/infrastructure/clickup"
	"clickup-mcp/internal/infrastructure/config"
	"clickup-mcp/internal/infrastructure/metrics"
	"clickup-mcp/internal/infrastructure/tracing"
	mcptransport "clickup-mcp/internal/transport/mcp"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "clickup-mcp",
		Short:         "MCP server exposing ClickUp workspaces as tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: auto-detect)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().String("team-id", "", "ClickUp workspace (team) ID (overrides config)")
	root.PersistentFlags().String("transport", "", "MCP transport: stdio or http (overrides config)")
	root.PersistentFlags().String("address", "", "Listen address for the http transport (overrides config)")

	load := func(cmd *cobra.Command) (*config.Config, error) {
		if configPath != "" {
			return config.Load(configPath, cmd.Flags())
		}
		return config.LoadFromDefaultLocations(cmd.Flags())
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return errors.Wrap(err, "load config")
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	var includeTasks bool
	hierarchy := &cobra.Command{
		Use:   "hierarchy",
		Short: "Print the workspace tree and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return errors.Wrap(err, "load config")
			}
			return runHierarchy(cmd.Context(), cfg, includeTasks)
		},
	}
	hierarchy.Flags().BoolVar(&includeTasks, "tasks", false, "Include tasks under each list")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return errors.Wrap(err, "load config")
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(cfg.Redacted())
		},
	}

	root.AddCommand(serve, hierarchy, configCmd)
	root.RunE = serve.RunE

	return root
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLevel(cfg.LogLevel),
	}))
}

// app holds the wired services shared by the commands.
type app struct {
	services mcptransport.Services
	metrics  *metrics.Metrics
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	opts := clickup.Options{
		BaseURL:     cfg.ClickUp.BaseURL,
		APIKey:      cfg.ClickUp.APIKey,
		AccessToken: cfg.ClickUp.AccessToken,
		TeamID:      cfg.ClickUp.TeamID,
		Timeout:     cfg.ClickUp.Timeout,
		RateLimit:   cfg.ClickUp.RateLimit,
		Logger:      logger,
	}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		opts.Observer = m
	}

	repo, err := clickup.New(opts)
	if err != nil {
		return nil, errors.Wrap(err, "create clickup client")
	}

	teamID := cfg.ClickUp.TeamID
	ws := service.NewWorkspaceService(repo, teamID, cfg.Hierarchy.Concurrency, logger)
	resolver := service.NewResolver(ws, logger)

	return &app{
		services: mcptransport.Services{
			Workspace: ws,
			Folders:   service.NewFolderService(repo, resolver, logger),
			Lists:     service.NewListService(repo, resolver, teamID, logger),
			Tags:      service.NewTagService(repo, resolver, logger),
			Tasks: service.NewTaskService(repo, resolver, teamID, service.BulkOptions{
				Concurrency:    cfg.Bulk.Concurrency,
				MaxConcurrency: cfg.Bulk.MaxConcurrency,
			}, logger),
		},
		metrics: m,
	}, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Setup(cfg.Tracing.Enabled, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return err
	}

	if a.metrics != nil {
		go serveMetrics(ctx, cfg.Metrics.Address, a.metrics, logger)
	}

	server := mcptransport.NewServer(mcptransport.Options{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
	}, a.services, a.metrics, logger)

	logger.Info("starting clickup MCP server",
		"version", cfg.Server.Version,
		"name", cfg.Server.Name,
		"transport", cfg.Server.Transport,
		"team_id", cfg.ClickUp.TeamID,
	)

	switch cfg.Server.Transport {
	case "http":
		err = server.ServeHTTP(ctx, cfg.Server.Address)
	default:
		err = server.ServeStdio()
	}
	if err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "error", err)
	}
}

func runHierarchy(ctx context.Context, cfg *config.Config, includeTasks bool) error {
	logger := newLogger(cfg)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	tree, err := a.services.Workspace.RenderHierarchy(ctx, service.HierarchyOptions{IncludeTasks: includeTasks})
	if err != nil {
		return errors.Wrap(err, "fetch hierarchy")
	}
	fmt.Println(tree)
	return nil
}
