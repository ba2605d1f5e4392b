package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SlavaKuntsov/software-security/internal/application/auth"
	"github.com/SlavaKuntsov/software-security/internal/application/chat"
	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/application/users"
	"github.com/SlavaKuntsov/software-security/internal/config"
	infraauth "github.com/SlavaKuntsov/software-security/internal/infrastructure/auth"
	infrachat "github.com/SlavaKuntsov/software-security/internal/infrastructure/chat"
	httprouter "github.com/SlavaKuntsov/software-security/internal/infrastructure/http"
	"github.com/SlavaKuntsov/software-security/internal/infrastructure/http/handlers"
	"github.com/SlavaKuntsov/software-security/internal/infrastructure/http/middleware"
	"github.com/SlavaKuntsov/software-security/internal/infrastructure/lockout"
	"github.com/SlavaKuntsov/software-security/internal/infrastructure/persistence/postgres"
	"github.com/SlavaKuntsov/software-security/internal/infrastructure/security"
	"github.com/SlavaKuntsov/software-security/internal/infrastructure/webhook"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	if err := postgres.Migrate(ctx, cfg.Database.URL); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	usersRepo := postgres.NewUsersRepository(pool)
	tokensRepo := postgres.NewTokensRepository(pool)
	messagesRepo := postgres.NewMessagesRepository(pool)

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	issuer, err := infraauth.NewTokenIssuer([]byte(cfg.JWT.Secret), tokensRepo, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	if err != nil {
		log.Fatal().Err(err).Msg("create token issuer")
	}

	generateUC := auth.NewGenerateTokens(issuer, tokensRepo)
	registerUC := auth.NewRegister(usersRepo, hasher, issuer)
	loginUC := auth.NewLogin(usersRepo, hasher, generateUC)
	refreshUC := auth.NewRefresh(issuer, usersRepo, generateUC)
	logoutUC := auth.NewLogout(tokensRepo)
	oauthCallbackUC := auth.NewOAuthCallback(usersRepo, registerUC, generateUC)
	updateUserUC := users.NewUpdateUser(usersRepo)
	deleteUserUC := users.NewDeleteUser(usersRepo)
	chatSvc := chat.NewService(messagesRepo, usersRepo)

	handlers.InitOAuthProviders(cfg.OAuth.CallbackBaseURL, cfg.OAuth.SessionSecret, cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret)

	lockoutStore := lockout.NewMemoryStore(cfg.Lockout.MaxAttempts, cfg.Lockout.Cooldown)
	var emitter ports.WebhookEmitter = webhook.NewNoopEmitter()
	if cfg.Audit.WebhookURL != "" {
		emitter = webhook.NewHTTPEmitter(cfg.Audit.WebhookURL, cfg.Audit.WebhookSecret)
	}

	cookies := handlers.NewCookieManager(cfg.JWT.RefreshExpiry, !cfg.Server.IsDevelopment)
	authHandler := handlers.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, usersRepo, cookies, lockoutStore, emitter, log)
	oauthHandler := handlers.NewOAuthHandler(oauthCallbackUC, cookies, emitter, log)
	usersHandler := handlers.NewUsersHandler(updateUserUC, deleteUserUC, usersRepo, log)
	chatHandler := handlers.NewChatHandler(chatSvc, infrachat.NewRegistry(), log)
	healthHandler := handlers.NewHealthHandler(pool, redisClient)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.Server.RateLimit, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	requireJWT := middleware.NewAuthValidator(issuer).Handler

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:   authHandler,
		OAuthHandler:  oauthHandler,
		UsersHandler:  usersHandler,
		ChatHandler:   chatHandler,
		HealthHandler: healthHandler,
		RequireJWT:    requireJWT,
		CORS:          middleware.CORS(cfg.Server.AllowedOrigins),
		Secure:        middleware.NewSecure(cfg.Server.IsDevelopment),
		IPRateLimit:   ipLimit,
		Log:           log,
		Metrics:       true,
	})

	// WriteTimeout stays unset: the chat SSE stream holds its response open.
	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
