package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/userdesk/userdesk/internal/backend"
	"github.com/userdesk/userdesk/internal/config"
	"github.com/userdesk/userdesk/internal/metrics"
	"github.com/userdesk/userdesk/internal/web"
)

func main() {
	// Load configuration
	config.Load()

	// Initialize logger with config
	logger := initLogger()
	defer logger.Sync()

	if config.Session().Generated {
		logger.Warn("SECRET_KEY not set, sessions will not survive a restart")
	}

	// Connect once; a failure leaves the process in demo mode
	ctx := context.Background()
	connector := backend.NewConnector(backendConfig(), logger)
	state := connector.Connect(ctx)

	as := web.NewAppState(
		logger,
		state,
		metrics.New(),
		config.Session().SecretKey,
		config.Session().CookieName,
		config.Http().MaxRequestSize,
	)

	gin.SetMode(gin.ReleaseMode)
	router := web.NewRouter(as)

	addr := fmt.Sprintf("%s:%d", config.Http().Host, config.Http().Port)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Setup graceful shutdown
	done := setupSignalHandler(state, server, logger)

	logger.Info("Starting userdesk server",
		zap.String("address", addr),
		zap.String("mode", state.Mode()))

	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	<-done
	logger.Info("Server shutdown complete")
}

// backendConfig maps the loaded configuration onto the backend package
func backendConfig() backend.Config {
	db := config.Database()
	return backend.Config{
		Backend: db.Backend,
		Firebase: backend.FirebaseConfig{
			CredentialsFile: db.Firebase.CredentialsFile,
			DatabaseURL:     db.Firebase.DatabaseURL,
			CollectionPath:  db.Firebase.CollectionPath,
		},
		Postgres: backend.PostgresConfig{
			DSN: db.Postgres.DSN(),
		},
		Neo4j: backend.Neo4jConfig{
			URI:      db.Neo4j.URI,
			Username: db.Neo4j.Username,
			Password: db.Neo4j.Password,
			Database: db.Neo4j.Database,
		},
	}
}

func initLogger() *zap.Logger {
	logConfig := config.Logger()

	logger, err := newLogger(logConfig.Level, logConfig.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	if _, err := zap.ParseAtomicLevel(logConfig.Level); err != nil {
		logger.Warn("Unknown log level, using info", zap.String("level", logConfig.Level))
	}

	return logger
}

// newLogger builds a JSON logger for "json" and a console logger otherwise.
// An unparsable level falls back to info.
func newLogger(level, format string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		atomicLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cfg := zap.NewDevelopmentConfig()
	if format == "json" {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = atomicLevel
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func setupSignalHandler(state backend.State, server *http.Server, logger *zap.Logger) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalCh

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
		}

		if err := state.Close(ctx); err != nil {
			logger.Error("Error closing backend", zap.Error(err))
		}

		done <- struct{}{}
	}()

	return done
}
