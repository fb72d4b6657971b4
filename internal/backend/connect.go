package backend

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/userdesk/userdesk/internal/users"
)

const (
	BackendFirebase = "firebase"
	BackendPostgres = "postgres"
	BackendNeo4j    = "neo4j"
)

const connectTimeout = 10 * time.Second

// Config selects and configures the backing store
type Config struct {
	Backend  string
	Firebase FirebaseConfig
	Postgres PostgresConfig
	Neo4j    Neo4jConfig
}

// FirebaseConfig represents Firebase Realtime Database configuration
type FirebaseConfig struct {
	CredentialsFile string
	DatabaseURL     string
	CollectionPath  string
}

// PostgresConfig represents PostgreSQL connection configuration
type PostgresConfig struct {
	DSN string
}

// Neo4jConfig represents Neo4j connection configuration
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

// Connector connects once and hands out the same State afterwards
type Connector struct {
	cfg    Config
	logger *zap.Logger

	once  sync.Once
	state State
}

// NewConnector creates a connector for cfg
func NewConnector(cfg Config, logger *zap.Logger) *Connector {
	return &Connector{
		cfg:    cfg,
		logger: logger,
	}
}

// Connect returns the backend state, initializing it on the first call
func (c *Connector) Connect(ctx context.Context) State {
	c.once.Do(func() {
		c.state = Connect(ctx, c.cfg, c.logger)
	})
	return c.state
}

// Connect initializes the configured backend. It never fails: any problem
// yields a Degraded state which is logged once here.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) State {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendFirebase
	}

	var state State
	switch backend {
	case BackendFirebase:
		state = connectFirebase(ctx, cfg.Firebase)
	case BackendPostgres:
		state = connectPostgres(ctx, cfg.Postgres)
	case BackendNeo4j:
		state = connectNeo4j(ctx, cfg.Neo4j)
	default:
		state = &Degraded{Backend: backend, Reason: ReasonUnsupportedBackend}
	}

	switch s := state.(type) {
	case *Ready:
		logger.Info("Backend initialized", zap.String("backend", s.Backend))
	case *Degraded:
		fields := []zap.Field{
			zap.String("backend", s.Backend),
			zap.String("reason", string(s.Reason)),
			zap.String("detail", s.Description()),
		}
		if s.Err != nil {
			fields = append(fields, zap.Error(s.Err))
		}
		switch s.Reason {
		case ReasonMissingCredentials:
			fields = append(fields, zap.String("credentials_file", cfg.Firebase.CredentialsFile))
			logger.Warn("Credentials file not found, running in demo mode", fields...)
		case ReasonMissingDatabaseURL:
			logger.Warn("Database URL not configured, running in demo mode", fields...)
		default:
			logger.Error("Backend initialization failed, running in demo mode", fields...)
		}
	}

	return state
}

func connectFirebase(ctx context.Context, cfg FirebaseConfig) State {
	if !fileExists(cfg.CredentialsFile) {
		return &Degraded{Backend: BackendFirebase, Reason: ReasonMissingCredentials}
	}
	if cfg.DatabaseURL == "" {
		return &Degraded{Backend: BackendFirebase, Reason: ReasonMissingDatabaseURL}
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		DatabaseURL: cfg.DatabaseURL,
	}, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return initFailed(BackendFirebase, fmt.Errorf("failed to create firebase app: %w", err))
	}

	client, err := app.Database(ctx)
	if err != nil {
		return initFailed(BackendFirebase, fmt.Errorf("failed to create database client: %w", err))
	}

	store := users.NewFirebaseStore(client, cfg.CollectionPath)
	return NewReady(BackendFirebase, store, nil)
}

func connectPostgres(ctx context.Context, cfg PostgresConfig) State {
	if cfg.DSN == "" {
		return &Degraded{Backend: BackendPostgres, Reason: ReasonMissingDatabaseURL}
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	store := users.NewPostgresStore(db)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		db.Close()
		return initFailed(BackendPostgres, fmt.Errorf("failed to connect to postgres: %w", err))
	}
	if err := store.CreateTables(ctx); err != nil {
		db.Close()
		return initFailed(BackendPostgres, err)
	}

	return NewReady(BackendPostgres, store, store.Close)
}

func connectNeo4j(ctx context.Context, cfg Neo4jConfig) State {
	if cfg.URI == "" {
		return &Degraded{Backend: BackendNeo4j, Reason: ReasonMissingDatabaseURL}
	}

	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth)
	if err != nil {
		return initFailed(BackendNeo4j, fmt.Errorf("failed to create Neo4j driver: %w", err))
	}
	store := users.NewNeo4jStore(driver, cfg.Database)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		driver.Close(ctx)
		return initFailed(BackendNeo4j, fmt.Errorf("failed to connect to Neo4j: %w", err))
	}
	if err := store.InitializeSchema(ctx); err != nil {
		driver.Close(ctx)
		return initFailed(BackendNeo4j, err)
	}

	return NewReady(BackendNeo4j, store, store.Close)
}

func initFailed(backend string, err error) *Degraded {
	return &Degraded{Backend: backend, Reason: ReasonInitFailed, Err: err}
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
