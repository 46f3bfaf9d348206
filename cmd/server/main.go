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

	"filevault/internal/auth"
	"filevault/internal/config"
	"filevault/internal/filetypes"
	"filevault/internal/handler"
	"filevault/internal/middleware"
	"filevault/internal/repository/postgres"
	"filevault/internal/service"
	"filevault/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
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
		logFile, err := config.OpenLogFile(cfg.LogDir)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
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
		"upload_root", cfg.UploadRoot,
		"auth_mode", cfg.AuthMode,
	)

	// Create session verifier (and issuer, when sessions are local)
	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	var verifier auth.TokenVerifier
	var issuer auth.TokenIssuer

	switch cfg.AuthMode {
	case "jwks":
		// Delegate token verification to an external identity provider;
		// registration and login are the provider's business.
		verifier, err = auth.NewJWKSVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWKS verifier: %v", err)
		}
	default:
		authenticator, aerr := auth.NewHS256Authenticator(cfg.JWTSecret, sessionTTL, logger)
		if aerr != nil {
			log.Fatalf("Failed to create authenticator: %v", aerr)
		}
		verifier = authenticator
		issuer = authenticator
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

	// Create table names and ensure the catalog schema
	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	folderRepo := postgres.NewFolderRepository(repoConfig)
	fileRepo := postgres.NewFileRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Physical store and content-type registry
	store := storage.NewDiskStore(cfg.UploadRoot, logger)
	typeRegistry, err := filetypes.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load content-type registry: %v", err)
	}

	// Create services
	namer := service.NewVersionNamer(fileRepo, store)
	userService := service.NewUserService(userRepo, issuer, sessionTTL, logger)
	folderService := service.NewFolderService(userRepo, folderRepo, fileRepo, txManager, namer, store, logger)
	fileService := service.NewFileService(userRepo, folderRepo, fileRepo, namer, store, typeRegistry, logger)

	chatClient, err := service.NewChatClient(cfg.ChatProvider, cfg.AnthropicAPIKey, cfg.ChatModel)
	if err != nil {
		log.Fatalf("Failed to create chat client: %v", err)
	}
	chatService := service.NewChatService(chatClient, logger)

	// Create handlers
	userHandler := handler.NewUserHandler(userService, logger)
	folderHandler := handler.NewFolderHandler(folderService, logger)
	fileHandler := handler.NewFileHandler(fileService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns). Folder paths
	// arrive URL-encoded as a single segment; PathValue decodes them.
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Session routes (local auth mode only)
	if issuer != nil {
		mux.HandleFunc("POST /register/{$}", userHandler.Register)
		mux.HandleFunc("POST /login/{$}", userHandler.Login)
		mux.HandleFunc("POST /logout/{$}", userHandler.Logout)
	}
	mux.HandleFunc("GET /home/{$}", userHandler.Home)

	// Help assistant (public)
	mux.HandleFunc("POST /chatbot", chatHandler.Chat)

	// Folder routes
	mux.HandleFunc("POST /create_folder/{$}", folderHandler.CreateFolder)
	mux.HandleFunc("GET /folders/{$}", folderHandler.ListFolders)
	mux.HandleFunc("DELETE /delete_folder/{folder_path}", folderHandler.DeleteFolder)

	// File routes
	mux.HandleFunc("POST /upload/{folder_path}", fileHandler.Upload)
	mux.HandleFunc("GET /folder/{folder_path}/files/{$}", fileHandler.ListFiles)
	mux.HandleFunc("GET /folder/{folder_path}/{filename}", fileHandler.Preview)
	mux.HandleFunc("GET /download/{folder_path}/{filename}", fileHandler.Download)
	mux.HandleFunc("DELETE /delete_file/{folder_path}/{filename}", fileHandler.DeleteFile)

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS -> Recovery -> Auth -> Routes
	httpHandler = middleware.Auth(verifier, logger)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
