package users

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// exerciseStore runs the add / list / delete lifecycle against a live store
func exerciseStore(t *testing.T, store UserStore) {
	ctx := context.Background()

	before, err := store.ListUsers(ctx)
	require.NoError(t, err)

	created, err := store.CreateUser(ctx, &CreateUserRequest{Name: "Ann", Email: "a@x.com"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	after, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)
	assert.Contains(t, after, &User{ID: created.ID, Name: "Ann", Email: "a@x.com"})

	require.NoError(t, store.DeleteUser(ctx, created.ID))
	// second delete of the same id is a no-op
	require.NoError(t, store.DeleteUser(ctx, created.ID))

	final, err := store.ListUsers(ctx)
	require.NoError(t, err)
	for _, u := range final {
		assert.NotEqual(t, created.ID, u.ID)
	}
}

func TestPostgresStoreIntegration(t *testing.T) {
	dsn := os.Getenv("USERDESK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("USERDESK_TEST_POSTGRES_DSN not set, skipping integration test")
	}

	ctx := context.Background()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	store := NewPostgresStore(db)
	defer store.Close(ctx)

	if err := store.Ping(ctx); err != nil {
		t.Skipf("Postgres not reachable, skipping integration test: %v", err)
	}
	require.NoError(t, store.CreateTables(ctx))

	exerciseStore(t, store)
}

func TestNeo4jStoreIntegration(t *testing.T) {
	uri := os.Getenv("USERDESK_TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("USERDESK_TEST_NEO4J_URI not set, skipping integration test")
	}

	ctx := context.Background()
	auth := neo4j.BasicAuth(
		os.Getenv("USERDESK_TEST_NEO4J_USERNAME"),
		os.Getenv("USERDESK_TEST_NEO4J_PASSWORD"),
		"",
	)
	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		t.Skipf("Neo4j not available, skipping integration test: %v", err)
	}
	store := NewNeo4jStore(driver, os.Getenv("USERDESK_TEST_NEO4J_DATABASE"))
	defer store.Close(ctx)

	if err := store.Ping(ctx); err != nil {
		t.Skipf("Neo4j not reachable, skipping integration test: %v", err)
	}
	require.NoError(t, store.InitializeSchema(ctx))

	exerciseStore(t, store)
}
