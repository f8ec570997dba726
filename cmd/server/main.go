package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/omaju/auth-service/internal/config"
	"github.com/omaju/auth-service/internal/handler"
	"github.com/omaju/auth-service/internal/mailer"
	"github.com/omaju/auth-service/internal/provider"
	"github.com/omaju/auth-service/internal/repository"
	"github.com/omaju/auth-service/internal/token"
	"github.com/omaju/auth-service/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", "auth-service").
		Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if !cfg.IsProduction() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}
	logger.Info().Str("database", cfg.MongoDBName).Msg("connected to mongodb")

	db := client.Database(cfg.MongoDBName)
	emailRepo := repository.NewEmailUserMongoRepository(ctx, &logger, db)
	googleRepo := repository.NewGoogleUserMongoRepository(ctx, &logger, db)
	githubRepo := repository.NewGithubUserMongoRepository(ctx, &logger, db)
	resolver := repository.NewResolver(emailRepo, googleRepo, githubRepo)

	tokens := token.NewService(cfg.Token)

	mail, err := mailer.NewMailer(&logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize mailer")
	}

	authUsecase := usecase.NewAuthUsecase(
		resolver, emailRepo, googleRepo, githubRepo, tokens, mail, &logger)

	authHandler, err := handler.NewAuthHandler(authUsecase, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize auth handler")
	}
	oauthHandler := handler.NewOAuthHandler(buildProviders(cfg, &logger), authUsecase, cfg, &logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(cfg, authHandler, oauthHandler, authUsecase),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("environment", cfg.Environment).
			Msg("server started")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-signalCtx.Done()

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down server cleanly")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to disconnect from mongodb")
	}
}

// buildProviders registers each OAuth provider that has credentials
// configured. A missing provider only disables its own routes.
func buildProviders(cfg *config.Config, logger *zerolog.Logger) *provider.Registry {
	var providers []provider.Provider

	google, err := provider.NewGoogleProvider(
		cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL("google"))
	if err != nil {
		logger.Warn().Err(err).Msg("google oauth is disabled")
	} else {
		providers = append(providers, google)
	}

	github, err := provider.NewGithubProvider(
		cfg.GithubClientID, cfg.GithubClientSecret, cfg.OAuthRedirectURL("github"))
	if err != nil {
		logger.Warn().Err(err).Msg("github oauth is disabled")
	} else {
		providers = append(providers, github)
	}

	return provider.NewRegistry(providers...)
}
