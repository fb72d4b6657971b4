package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/userdesk/userdesk/internal/backend"
)

// this is a pointer so that if someone attempts to use it before loading it will
// panic and force them to load it first.
// it is also private so that it cannot be modified after loading.
var _loaded *Config

// Config is the main configuration structure
type Config struct {
	Common Common `yaml:"common"`
}

// Load loads the configuration following proper precedence: defaults → config file → .env → environment variables.
// The .env file is read first so it can point USERDESK_CONFIG_FILE at the YAML file;
// its values still only take effect through the environment overrides.
func Load() {
	cfg := defaultConfig
	_loaded = &cfg

	// godotenv never overrides variables that are already set
	envFile := os.Getenv("USERDESK_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("No env file loaded from %s: %v", envFile, err)
	}

	configFile := os.Getenv("USERDESK_CONFIG_FILE")
	if configFile == "" {
		configFile = "userdesk.yaml"
	}

	if err := LoadFromFile(configFile); err != nil {
		log.Printf("Failed to load config file: %v, using defaults", err)
	} else {
		log.Printf("Successfully loaded config from file: %s", configFile)
	}

	// Apply environment variable overrides (highest priority)
	ApplyEnvOverrides()
	ensureSecretKey()

	log.Printf("Final config - backend: %s, credentials: %s, database url set: %t",
		_loaded.Common.Database.Backend,
		_loaded.Common.Database.Firebase.CredentialsFile,
		_loaded.Common.Database.Firebase.DatabaseURL != "")
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := defaultConfig

	// Merge YAML values over defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	_loaded = &cfg
	return nil
}

// set sane defaults for all of the config options. when loading the config from
// the file, any options that are not set will be set to these defaults.
var defaultConfig = Config{
	Common: Common{
		Log: logConfig{
			Level:  "info",
			Format: "json",
		},
		Http: httpConfig{
			Host:           "0.0.0.0",
			Port:           5000,
			MaxRequestSize: 1048576,
		},
		Session: sessionConfig{
			CookieName: "userdesk_session",
		},
		Database: databaseConfig{
			Backend: backend.BackendFirebase,
			Firebase: firebaseConfig{
				CredentialsFile: "credentials.json",
				CollectionPath:  "users",
			},
			Postgres: postgresConfig{
				User:     "postgres",
				Password: "postgres",
				Host:     "localhost",
				Port:     5432,
				Database: "userdesk",
			},
			Neo4j: neo4jConfig{
				URI: "bolt://localhost:7687",
			},
		},
	},
}

type Common struct {
	Log      logConfig      `yaml:"log"`
	Http     httpConfig     `yaml:"http"`
	Session  sessionConfig  `yaml:"session"`
	Database databaseConfig `yaml:"database"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type httpConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxRequestSize int64  `yaml:"max_request_size"`
}

type sessionConfig struct {
	SecretKey  string `yaml:"secret_key"`
	CookieName string `yaml:"cookie_name"`
	// set when no key was configured and one was generated at startup
	Generated bool `yaml:"-"`
}

type databaseConfig struct {
	Backend  string         `yaml:"backend"` // "firebase", "postgres" or "neo4j"
	Firebase firebaseConfig `yaml:"firebase"`
	Postgres postgresConfig `yaml:"postgres"`
	Neo4j    neo4jConfig    `yaml:"neo4j"`
}

type firebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file"` // service account JSON
	DatabaseURL     string `yaml:"database_url"`
	CollectionPath  string `yaml:"collection_path"`
}

type postgresConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

func (c postgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		url.QueryEscape(c.Database),
	)
}

type neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// there should be a getter for each top level field in the config struct.
// these getters will panic if the config has not been loaded.

func Logger() logConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Log
}

func Http() httpConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Http
}

func Session() sessionConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Session
}

func Database() databaseConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Database
}

func ApplyEnvOverrides() {
	if _loaded == nil {
		return
	}

	if secretKey := os.Getenv("SECRET_KEY"); secretKey != "" {
		_loaded.Common.Session.SecretKey = secretKey
	}

	if backendName := os.Getenv("USERDESK_BACKEND"); backendName != "" {
		_loaded.Common.Database.Backend = backendName
	}
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		_loaded.Common.Database.Firebase.DatabaseURL = databaseURL
	}
	if credentials := os.Getenv("FIREBASE_CREDENTIALS"); credentials != "" {
		_loaded.Common.Database.Firebase.CredentialsFile = credentials
	}

	if logLevel := os.Getenv("USERDESK_LOG_LEVEL"); logLevel != "" {
		_loaded.Common.Log.Level = logLevel
	}
	if logFormat := os.Getenv("USERDESK_LOG_FORMAT"); logFormat != "" {
		_loaded.Common.Log.Format = logFormat
	}

	if httpHost := os.Getenv("USERDESK_HTTP_HOST"); httpHost != "" {
		_loaded.Common.Http.Host = httpHost
	}
	if httpPort := os.Getenv("USERDESK_HTTP_PORT"); httpPort != "" {
		if port, err := strconv.Atoi(httpPort); err == nil {
			_loaded.Common.Http.Port = port
		}
	}

	if dbHost := os.Getenv("USERDESK_DB_HOST"); dbHost != "" {
		_loaded.Common.Database.Postgres.Host = dbHost
	}
	if dbPort := os.Getenv("USERDESK_DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			_loaded.Common.Database.Postgres.Port = port
		}
	}
	if dbUser := os.Getenv("USERDESK_DB_USER"); dbUser != "" {
		_loaded.Common.Database.Postgres.User = dbUser
	}
	if dbPassword := os.Getenv("USERDESK_DB_PASSWORD"); dbPassword != "" {
		_loaded.Common.Database.Postgres.Password = dbPassword
	}
	if dbName := os.Getenv("USERDESK_DB_NAME"); dbName != "" {
		_loaded.Common.Database.Postgres.Database = dbName
	}

	if neo4jURI := os.Getenv("USERDESK_NEO4J_URI"); neo4jURI != "" {
		_loaded.Common.Database.Neo4j.URI = neo4jURI
	}
	if neo4jUsername := os.Getenv("USERDESK_NEO4J_USERNAME"); neo4jUsername != "" {
		_loaded.Common.Database.Neo4j.Username = neo4jUsername
	}
	if neo4jPassword := os.Getenv("USERDESK_NEO4J_PASSWORD"); neo4jPassword != "" {
		_loaded.Common.Database.Neo4j.Password = neo4jPassword
	}
	if neo4jDatabase := os.Getenv("USERDESK_NEO4J_DATABASE"); neo4jDatabase != "" {
		_loaded.Common.Database.Neo4j.Database = neo4jDatabase
	}
}

// ensureSecretKey fills in a random session key when none is configured.
// Sessions then do not survive a restart.
func ensureSecretKey() {
	if _loaded == nil || _loaded.Common.Session.SecretKey != "" {
		return
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("failed to generate session key: %v", err))
	}
	_loaded.Common.Session.SecretKey = hex.EncodeToString(buf)
	_loaded.Common.Session.Generated = true
	log.Printf("SECRET_KEY not set, generated a per-process session key")
}
