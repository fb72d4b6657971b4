package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserSchema represents the users table schema in PostgreSQL
type UserSchema struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull" json:"email"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// PostgresStore implements the UserStore interface with bun
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new user store instance
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// CreateTables creates the users table if it does not exist
func (s *PostgresStore) CreateTables(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*UserSchema)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create table for model %T: %w", (*UserSchema)(nil), err)
	}
	return nil
}

// ListUsers returns all users in insertion order
func (s *PostgresStore) ListUsers(ctx context.Context) ([]*User, error) {
	var rows []UserSchema
	err := s.db.NewSelect().
		Model(&rows).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := make([]*User, 0, len(rows))
	for _, row := range rows {
		result = append(result, UserSchemaToUser(row))
	}
	return result, nil
}

// CreateUser inserts a user under a new UUID key
func (s *PostgresStore) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	row := UserSchema{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now(),
	}

	_, err := s.db.NewInsert().
		Model(&row).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return UserSchemaToUser(row), nil
}

// DeleteUser removes the row with userID, if any
func (s *PostgresStore) DeleteUser(ctx context.Context, userID string) error {
	_, err := s.db.NewDelete().
		Model((*UserSchema)(nil)).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool
func (s *PostgresStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func UserSchemaToUser(schema UserSchema) *User {
	return &User{
		ID:    schema.ID,
		Name:  schema.Name,
		Email: schema.Email,
	}
}
