package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/userdesk/userdesk/internal/users"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}

func TestConnectFirebaseMissingCredentials(t *testing.T) {
	logger, logs := observedLogger()

	state := Connect(context.Background(), Config{
		Firebase: FirebaseConfig{
			CredentialsFile: filepath.Join(t.TempDir(), "absent.json"),
			DatabaseURL:     "https://demo-default-rtdb.firebaseio.com",
		},
	}, logger)

	degraded, ok := state.(*Degraded)
	require.True(t, ok)
	assert.Equal(t, BackendFirebase, degraded.Backend)
	assert.Equal(t, ReasonMissingCredentials, degraded.Reason)
	assert.Equal(t, "demo", state.Mode())
	assert.NoError(t, state.HealthCheck(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Credentials file not found, running in demo mode").Len())
}

func TestConnectFirebaseMissingDatabaseURL(t *testing.T) {
	logger, logs := observedLogger()
	credentials := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(credentials, []byte(`{}`), 0o600))

	state := Connect(context.Background(), Config{
		Backend:  BackendFirebase,
		Firebase: FirebaseConfig{CredentialsFile: credentials},
	}, logger)

	degraded, ok := state.(*Degraded)
	require.True(t, ok)
	assert.Equal(t, ReasonMissingDatabaseURL, degraded.Reason)
	assert.Equal(t, "database URL not set", degraded.Description())
	assert.Equal(t, 1, logs.FilterMessage("Database URL not configured, running in demo mode").Len())
}

func TestConnectFirebaseCredentialsDirectory(t *testing.T) {
	logger, _ := observedLogger()

	state := Connect(context.Background(), Config{
		Firebase: FirebaseConfig{
			CredentialsFile: t.TempDir(),
			DatabaseURL:     "https://demo-default-rtdb.firebaseio.com",
		},
	}, logger)

	degraded, ok := state.(*Degraded)
	require.True(t, ok)
	assert.Equal(t, ReasonMissingCredentials, degraded.Reason)
}

func TestConnectFirebaseInvalidCredentials(t *testing.T) {
	logger, logs := observedLogger()
	credentials := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(credentials, []byte(`not json`), 0o600))

	state := Connect(context.Background(), Config{
		Firebase: FirebaseConfig{
			CredentialsFile: credentials,
			DatabaseURL:     "https://demo-default-rtdb.firebaseio.com",
		},
	}, logger)

	degraded, ok := state.(*Degraded)
	require.True(t, ok)
	assert.Equal(t, ReasonInitFailed, degraded.Reason)
	assert.Error(t, degraded.Err)

	entries := logs.FilterMessage("Backend initialization failed, running in demo mode").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "init_failed", fields["reason"])
	assert.Equal(t, degraded.Description(), fields["detail"])
	assert.Contains(t, fields["detail"], degraded.Err.Error())
}

func TestConnectUnsupportedBackend(t *testing.T) {
	logger, _ := observedLogger()

	state := Connect(context.Background(), Config{Backend: "mongo"}, logger)

	degraded, ok := state.(*Degraded)
	require.True(t, ok)
	assert.Equal(t, ReasonUnsupportedBackend, degraded.Reason)
	assert.Equal(t, `unsupported backend "mongo"`, degraded.Description())
}

func TestConnectPostgresWithoutDSN(t *testing.T) {
	logger, _ := observedLogger()

	state := Connect(context.Background(), Config{Backend: BackendPostgres}, logger)

	degraded, ok := state.(*Degraded)
	require.True(t, ok)
	assert.Equal(t, BackendPostgres, degraded.Backend)
	assert.Equal(t, ReasonMissingDatabaseURL, degraded.Reason)
}

func TestConnectorReusesState(t *testing.T) {
	logger, logs := observedLogger()
	connector := NewConnector(Config{
		Firebase: FirebaseConfig{CredentialsFile: filepath.Join(t.TempDir(), "absent.json")},
	}, logger)

	first := connector.Connect(context.Background())
	second := connector.Connect(context.Background())

	assert.Same(t, first, second)
	assert.Equal(t, 1, logs.Len())
}

type pingStore struct {
	users.UserStore
	err error
}

func (p *pingStore) Ping(ctx context.Context) error { return p.err }

func TestReadyState(t *testing.T) {
	closed := false
	store := &pingStore{err: errors.New("unreachable")}
	state := NewReady(BackendPostgres, store, func(ctx context.Context) error {
		closed = true
		return nil
	})

	assert.Equal(t, "live", state.Mode())
	assert.EqualError(t, state.HealthCheck(context.Background()), "unreachable")
	require.NoError(t, state.Close(context.Background()))
	assert.True(t, closed)
	assert.NotNil(t, state.Service)
}
