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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lumina/internal/api"
	"lumina/internal/config"
	internaldb "lumina/internal/db"
	"lumina/internal/db/repository"
	"lumina/internal/declarative"
	"lumina/internal/engine"
	"lumina/internal/llm"
	"lumina/internal/middleware"
	"lumina/internal/service/chat"
	"lumina/internal/service/security"
	"lumina/internal/sqlguard"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

// ownershipColumns names the identity column per table for row-security
// predicates. Tables not listed fall back to sqlguard.DefaultOwnerColumn.
var ownershipColumns = sqlguard.OwnershipColumns{
	"employees":  "Email",
	"attendance": "EmployeeEmail",
}

func runServe(ctx context.Context) error {
	_ = config.LoadDotEnv(envFile)
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.PermDBPath, 4)
	if err != nil {
		return fmt.Errorf("open permission store: %w", err)
	}
	defer writeDB.Close()
	defer readDB.Close()

	if err := internaldb.RunMigrations(writeDB); err != nil {
		return fmt.Errorf("migrate permission store: %w", err)
	}

	// Read-side repos serve the request path; write-side repos serve admin
	// mutations over the single serialized write connection.
	userRead := repository.NewUserRepo(readDB)
	grantRead := repository.NewGrantRepo(readDB)
	permRead := repository.NewPermissionRepo(readDB)
	projectRead := repository.NewProjectRepo(readDB)
	auditRead := repository.NewAuditRepo(readDB)

	userWrite := repository.NewUserRepo(writeDB)
	projectWrite := repository.NewProjectRepo(writeDB)
	roleWrite := repository.NewRoleRepo(writeDB)
	grantWrite := repository.NewGrantRepo(writeDB)
	permWrite := repository.NewPermissionRepo(writeDB)
	auditWrite := repository.NewAuditRepo(writeDB)

	adminSvc := security.NewAdminService(
		userWrite, projectWrite, roleWrite, grantWrite, permWrite,
		cfg.AllowedEmailDomain, logger,
	)

	if cfg.SeedFile != "" {
		seed, err := declarative.LoadFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
		if err := declarative.NewApplier(adminSvc, logger).Apply(ctx, seed); err != nil {
			return fmt.Errorf("apply seed: %w", err)
		}
	}

	eng := engine.NewSQLiteEngine(cfg.DataDBPath, cfg.RowLimit, logger)

	resolver := security.NewRoleResolver(userRead, grantRead)
	validator := security.NewAccessValidator(permRead, eng)
	extractor := &sqlguard.LexicalExtractor{}
	injector := sqlguard.NewInjector(extractor, ownershipColumns)
	llmClient := llm.NewClient(cfg.LLM)

	sessions := chat.NewSessionCache(cfg.SessionTTL, cfg.SessionMaxEntries)
	defer sessions.Stop()

	chatSvc := chat.NewService(
		resolver, validator, permRead, extractor, injector,
		llmClient, llmClient, eng, auditWrite, sessions, logger,
	)

	handler := api.NewHandler(chatSvc, adminSvc, userRead, grantRead, projectRead, eng, auditRead, logger)

	verifier, err := middleware.NewHS256Verifier(cfg.JWTSecret)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier))
		r.Mount("/", handler.Routes())
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gateway listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		var err error
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
