package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-password/password"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	httpAPI "diary-service/internal/api"
	"diary-service/internal/config"
	grpcServer "diary-service/internal/grpc"
	"diary-service/internal/lookup"
	"diary-service/internal/service"
	"diary-service/pkg/auth"
)

func addServe(topLevel *cobra.Command, opts *globalOptions) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC lookup service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts.cfg, opts.logger)
		},
	}
	topLevel.AddCommand(cmd)
}

// tokenManagerFor builds the JWT manager. Without a configured secret a random
// one is generated, so tokens do not survive a restart.
func tokenManagerFor(cfg config.AuthConfig, logger *slog.Logger) (auth.TokenManager, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		generated, err := password.Generate(48, 10, 0, false, true)
		if err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		secret = generated
		logger.Warn("auth.jwt_secret not set, using a random secret for this process only")
	} else if len(secret) < auth.MinSecretLength {
		logger.Warn("JWT secret key is short, use at least 32 bytes for HS256")
	}
	return auth.NewTokenManager(secret, cfg.TokenTTL)
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("Failed to close resources", slog.String("error", err.Error()))
		}
	}()

	tokenManager, err := tokenManagerFor(cfg.Auth, logger)
	if err != nil {
		return err
	}

	diary := service.NewDiaryService(a.entries, a.movies, a.users, logger)
	directory := service.NewUserDirectory(a.users, logger)
	catalog := service.NewCatalog(a.movies, a.cache, cfg.Cache.TTL, logger)

	// --- gRPC ---
	grpcAddr := fmt.Sprintf(":%d", cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Error("Failed to listen for gRPC", slog.String("addr", grpcAddr), slog.String("error", err.Error()))
		return err
	}
	grpcSrv := grpc.NewServer()
	lookup.RegisterDiaryLookupServer(grpcSrv, grpcServer.NewServer(diary, directory, logger))
	reflection.Register(grpcSrv)

	// --- HTTP ---
	handler := httpAPI.NewHTTPHandler(diary, directory, catalog, logger, validator.New(), tokenManager, cfg.Auth.Required)
	limiter := httpAPI.NewRateLimiter(handler, cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)
	router := httpAPI.NewHTTPRouter(handler, limiter)
	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      httpAPI.WithCORS(router, cfg.Server.CORSOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)
	var wg conc.WaitGroup
	wg.Go(func() {
		logger.Info("Diary gRPC service starting", slog.String("addr", grpcAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("gRPC Serve() failed", slog.String("error", err.Error()))
			errCh <- err
		}
	})
	wg.Go(func() {
		logger.Info("Diary HTTP service starting", slog.String("addr", httpSrv.Addr), slog.Bool("authRequired", cfg.Auth.Required))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP ListenAndServe() failed", slog.String("error", err.Error()))
			errCh <- err
		}
	})

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Diary service shutting down...")
	case runErr = <-errCh:
		logger.Error("Server stopped unexpectedly, shutting down", slog.String("error", runErr.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}
	grpcSrv.GracefulStop()
	logger.Info("gRPC service gracefully stopped")

	wg.Wait()
	return runErr
}
