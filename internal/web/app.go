package web

import (
	"go.uber.org/zap"

	"github.com/userdesk/userdesk/internal/backend"
	"github.com/userdesk/userdesk/internal/metrics"
)

// AppState holds everything the handlers need. It is built once before the
// server starts and only read afterwards.
type AppState struct {
	Logger  *zap.Logger
	Backend backend.State
	Metrics *metrics.Metrics

	SessionSecret  []byte
	CookieName     string
	MaxRequestSize int64
}

// NewAppState creates the application state around an initialized backend
func NewAppState(logger *zap.Logger, state backend.State, m *metrics.Metrics, sessionSecret string, cookieName string, maxRequestSize int64) *AppState {
	_, demo := state.(*backend.Degraded)
	m.SetDemoMode(demo)

	if cookieName == "" {
		cookieName = "userdesk_session"
	}

	return &AppState{
		Logger:         logger,
		Backend:        state,
		Metrics:        m,
		SessionSecret:  []byte(sessionSecret),
		CookieName:     cookieName,
		MaxRequestSize: maxRequestSize,
	}
}

// backendName is the product name shown on pages
func backendName(name string) string {
	switch name {
	case backend.BackendPostgres:
		return "PostgreSQL"
	case backend.BackendNeo4j:
		return "Neo4j"
	default:
		return "Firebase"
	}
}
