package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jStore implements UserStore with (:User) nodes
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore creates a store using an already connected driver
func NewNeo4jStore(driver neo4j.DriverWithContext, database string) *Neo4jStore {
	return &Neo4jStore{
		driver:   driver,
		database: database,
	}
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   mode,
	})
}

// InitializeSchema creates the uniqueness constraint on user ids
func (s *Neo4jStore) InitializeSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.Run(ctx, "CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE", nil)
	if err != nil {
		return fmt.Errorf("failed to create user constraint: %w", err)
	}
	return nil
}

// ListUsers returns all user nodes in creation order
func (s *Neo4jStore) ListUsers(ctx context.Context) ([]*User, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `
		MATCH (u:User)
		RETURN u.id, u.name, u.email
		ORDER BY u.created_at, u.id
	`

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	list := make([]*User, 0)
	for result.Next(ctx) {
		record := result.Record()
		user := &User{}
		if id, ok := record.Values[0].(string); ok {
			user.ID = id
		}
		if name, ok := record.Values[1].(string); ok {
			user.Name = name
		}
		if email, ok := record.Values[2].(string); ok {
			user.Email = email
		}
		list = append(list, user)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	return list, nil
}

// CreateUser stores a new user node under a fresh UUID
func (s *Neo4jStore) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	user := &User{
		ID:    uuid.New().String(),
		Name:  req.Name,
		Email: req.Email,
	}

	params := map[string]any{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"created_at": time.Now().UTC(),
	}

	result, err := session.Run(ctx, "CREATE (u:User {id: $id, name: $name, email: $email, created_at: $created_at})", params)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// DeleteUser detaches and deletes the node with userID, if any
func (s *Neo4jStore) DeleteUser(ctx context.Context, userID string) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, "MATCH (u:User {id: $id}) DETACH DELETE u", map[string]any{"id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Ping verifies connectivity to the server
func (s *Neo4jStore) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close closes the driver
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
