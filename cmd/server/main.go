// Package main initializes and starts the sync server: configuration,
// logging, database connection, repositories, services, HTTP router,
// and the tombstone cleaner.
package main

import (
	"cmp"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/keydrop/keydrop-core/internal/authtoken"
	"github.com/keydrop/keydrop-core/internal/config"
	"github.com/keydrop/keydrop-core/internal/db"
	"github.com/keydrop/keydrop-core/internal/logger"
	"github.com/keydrop/keydrop-core/internal/notify"
	"github.com/keydrop/keydrop-core/internal/repository"
	handler "github.com/keydrop/keydrop-core/internal/server/handler/http"
	"github.com/keydrop/keydrop-core/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	db.StartSoftDeleteCleaner(context.Background(), postgresDB,
		time.Hour,
		options.SoftDeleteRetention,
		zapLogger,
	)

	signingKey, err := loadOrGenerateSigningKey(options.JWTSigningKeySeed, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot set up token signing key", zap.Error(err))
	}
	signer := authtoken.NewSigner(signingKey, options.JWTIssuer, options.AccessTokenTTL)

	publisher, err := notify.NewCommandPublisher(options.NATSURL)
	if err != nil {
		zapLogger.Fatal("cannot connect to NATS", zap.Error(err))
	}
	defer publisher.Close()

	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	syncRepo := repository.NewPostgresSyncRepository(postgresDB)
	commandRepo := repository.NewPostgresCommandRepository(postgresDB)

	authService := service.NewAuthService(authRepo, signer, options.RefreshTokenTTL)
	syncService := service.NewSyncService(syncRepo, options.SyncPageSize)
	commandService := service.NewCommandService(commandRepo, publisher)

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:    &handler.AuthHandler{AuthService: authService},
		SyncHandler:    &handler.SyncHandler{SyncService: syncService},
		CommandHandler: &handler.CommandHandler{CommandService: commandService},
		Signer:         signer,
		Logger:         zapLogger,
		RateLimitRPS:   options.RateLimitRPS,
		RateLimitBurst: options.RateLimitBurst,
	})

	server := &http.Server{
		Addr:    options.Port,
		Handler: router,
	}

	zapLogger.Info("starting sync server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

// loadOrGenerateSigningKey decodes a hex-encoded ed25519 seed if
// provided, otherwise generates and logs a fresh key — convenient for
// local development, but every restart without a configured seed
// invalidates all previously issued access tokens.
func loadOrGenerateSigningKey(hexSeed string, log *zap.Logger) (ed25519.PrivateKey, error) {
	if hexSeed == "" {
		key, err := authtoken.GenerateSigningKey()
		if err != nil {
			return nil, err
		}
		log.Warn("no JWT_SIGNING_KEY_SEED configured; generated an ephemeral key",
			zap.String("seed_hex", hex.EncodeToString(key.Seed())))
		return key, nil
	}

	seed, err := hex.DecodeString(hexSeed)
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("JWT_SIGNING_KEY_SEED must be a %d-byte hex string", ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}
