package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/jonathan/interview-coach/internal/server"
	"github.com/jonathan/interview-coach/internal/server/ratelimit"
	"github.com/jonathan/interview-coach/internal/skills"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes registration, résumé upload, interview and report endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply the database schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, "stdout")
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := buildServer(ctx, a)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

// buildServer wires the HTTP layer on top of an app.
func buildServer(ctx context.Context, a *app) (*server.Server, error) {
	cfg := a.cfg

	jwtConfig, err := cfg.JWT()
	if err != nil {
		return nil, fmt.Errorf("invalid auth configuration: %w", err)
	}
	passwords, err := cfg.Password()
	if err != nil {
		return nil, fmt.Errorf("invalid auth configuration: %w", err)
	}

	if serveMigrate {
		if err := a.store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.Report.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

	users := server.NewUserService(a.store, passwords, ingestion.NewExtractor(a.logger), skills.NewExtractor(a.vocabulary), a.logger)
	srv := server.New(server.Config{
		Port:         port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		MaxUploadMB:  cfg.Server.MaxUploadMB,
		AllowOrigin:  cfg.Server.AllowOrigin,
		ReportDir:    cfg.Report.Dir,
		RateLimit: ratelimit.FromSettings(ratelimit.Settings{
			Enabled:         cfg.RateLimit.Enabled,
			DefaultLimit:    cfg.RateLimit.DefaultLimit,
			DefaultWindow:   cfg.RateLimit.DefaultWindow,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
			Whitelist:       cfg.RateLimit.Whitelist,
			Blacklist:       cfg.RateLimit.Blacklist,
		}),
	}, server.Deps{
		Health:     a.store,
		Interviews: a.interviews,
		Users:      users,
		JWT:        server.NewJWTService(jwtConfig),
		Logger:     a.logger,
	})

	a.logger.Info("server configured",
		zap.Int("port", port),
		zap.String("database", cfg.Database.Driver),
		zap.String("renderer", cfg.Report.Renderer),
		zap.Int("question_count", cfg.Interview.QuestionCount),
	)
	return srv, nil
}
