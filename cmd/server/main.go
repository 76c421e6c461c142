package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"shelfgate/internal/auth"
	"shelfgate/internal/cache"
	"shelfgate/internal/config"
	"shelfgate/internal/domain/repositories"
	"shelfgate/internal/handler"
	"shelfgate/internal/middleware"
	"shelfgate/internal/repository/memory"
	"shelfgate/internal/repository/postgres"
	redisrepo "shelfgate/internal/repository/redis"
	"shelfgate/internal/service/access"
	"shelfgate/internal/service/quota"
	"shelfgate/internal/service/session"
	"shelfgate/internal/service/share"
	"shelfgate/internal/storage"
)

// Paths the session-liveness guard treats as always live. Login must
// work for timed-out users, the session endpoint reports the timeout
// instead of enforcing it, and health checks carry no principal at all.
var livenessAllowPaths = []string{
	"/api/auth/login",
	"/api/auth/session",
	"/health",
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Session token codec and external identity verifier
	codec, err := auth.NewCodec([]byte(cfg.JWTSecret), cfg.JWTIssuer)
	if err != nil {
		log.Fatalf("Failed to create token codec: %v", err)
	}

	verifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create identity verifier: %v", err)
	}
	defer verifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}

	resources := postgres.NewResourceLookup(repoConfig)
	acls := postgres.NewFileACLLookup(repoConfig)
	files := postgres.NewFileRepository(repoConfig)
	shareRepo := postgres.NewShareTokenRepository(repoConfig)

	// Session liveness store: redis in real deployments, in-memory for
	// single-instance dev.
	var kv repositories.KeyValueStore
	if cfg.RedisAddr != "" {
		redisKV, err := redisrepo.NewKeyValueStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisKV.Close()
		kv = redisKV
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	} else {
		kv = memory.NewKeyValueStore()
		logger.Warn("redis not configured, using in-memory session store")
	}

	objects, err := storage.NewS3Store(storage.Config{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
	})
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}
	logger.Info("object storage connected", "bucket", cfg.S3Bucket)

	// Services
	evaluator := access.NewEvaluator(acls, logger)
	shares := share.NewStore(shareRepo, logger)
	usedCache := cache.New[string, int64](quota.DefaultUsedTTL, 10_000)
	quotas := quota.NewTracker(files, config.QuotaLimits(), usedCache, logger)
	guard := session.NewGuard(kv, cfg.SessionWindow, livenessAllowPaths, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(verifier, codec, guard, cfg.JWTTTL, logger)
	shareHandler := handler.NewShareHandler(shares, evaluator, resources, objects, logger)
	quotaHandler := handler.NewQuotaHandler(quotas, logger)
	fileHandler := handler.NewFileHandler(evaluator, quotas, resources, files, objects, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/session", authHandler.Session)

	mux.HandleFunc("POST /api/shares", shareHandler.Create)
	mux.HandleFunc("GET /api/shares/{tenant}/{token}", shareHandler.Resolve)
	mux.HandleFunc("GET /api/shares/{tenant}/{token}/content", shareHandler.Download)
	mux.HandleFunc("DELETE /api/shares/{token}", shareHandler.Revoke)
	mux.HandleFunc("POST /api/admin/shares/purge", shareHandler.PurgeDead)

	mux.HandleFunc("GET /api/quota", quotaHandler.Get)

	mux.HandleFunc("POST /api/folders/{id}/files", fileHandler.Upload)
	mux.HandleFunc("GET /api/files/{id}", fileHandler.Download)
	mux.HandleFunc("DELETE /api/files/{id}", fileHandler.Delete)
	mux.HandleFunc("DELETE /api/files/{id}/purge", fileHandler.Purge)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Liveness → Routes
	h = middleware.SessionLiveness(guard, logger)(h)
	h = middleware.AuthMiddleware(codec)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
