package backend

import (
	"context"
	"fmt"

	"github.com/userdesk/userdesk/internal/users"
)

// Reason explains why the process is running without a backend
type Reason string

const (
	ReasonMissingCredentials Reason = "missing_credentials"
	ReasonMissingDatabaseURL Reason = "missing_database_url"
	ReasonInitFailed         Reason = "init_failed"
	ReasonUnsupportedBackend Reason = "unsupported_backend"
)

// State is the outcome of connecting at startup. It is either Ready or Degraded
// and never changes afterwards.
type State interface {
	Mode() string
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error

	isState()
}

// Store is a user store that can report on its own connection
type Store interface {
	users.UserStore
	Ping(ctx context.Context) error
}

// Ready holds a live store
type Ready struct {
	Backend string
	Service users.UserService

	store   Store
	closeFn func(ctx context.Context) error
}

// NewReady wraps store in a Ready state. closeFn may be nil.
func NewReady(backend string, store Store, closeFn func(ctx context.Context) error) *Ready {
	return &Ready{
		Backend: backend,
		Service: users.NewUserService(store),
		store:   store,
		closeFn: closeFn,
	}
}

func (r *Ready) Mode() string { return "live" }

func (r *Ready) HealthCheck(ctx context.Context) error {
	return r.store.Ping(ctx)
}

func (r *Ready) Close(ctx context.Context) error {
	if r.closeFn == nil {
		return nil
	}
	return r.closeFn(ctx)
}

func (r *Ready) isState() {}

// Degraded is demo mode: pages render but nothing reaches a database
type Degraded struct {
	Backend string
	Reason  Reason
	Err     error
}

func (d *Degraded) Mode() string { return "demo" }

// HealthCheck succeeds; demo mode is a valid running state
func (d *Degraded) HealthCheck(ctx context.Context) error { return nil }

func (d *Degraded) Close(ctx context.Context) error { return nil }

func (d *Degraded) isState() {}

// Description is a short human readable explanation of the reason
func (d *Degraded) Description() string {
	switch d.Reason {
	case ReasonMissingCredentials:
		return "credentials file not found"
	case ReasonMissingDatabaseURL:
		return "database URL not set"
	case ReasonUnsupportedBackend:
		return fmt.Sprintf("unsupported backend %q", d.Backend)
	default:
		if d.Err != nil {
			return fmt.Sprintf("initialization failed: %v", d.Err)
		}
		return "initialization failed"
	}
}
