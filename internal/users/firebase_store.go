package users

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"
)

// DefaultCollectionPath is the realtime database path holding user records
const DefaultCollectionPath = "users"

// FirebaseStore implements UserStore on top of a Firebase Realtime Database reference
type FirebaseStore struct {
	ref *db.Ref
}

// NewFirebaseStore creates a store rooted at path
func NewFirebaseStore(client *db.Client, path string) *FirebaseStore {
	if path == "" {
		path = DefaultCollectionPath
	}
	return &FirebaseStore{
		ref: client.NewRef(path),
	}
}

// ListUsers fetches the whole collection. Push keys sort chronologically,
// so the result is in insertion order.
func (s *FirebaseStore) ListUsers(ctx context.Context) ([]*User, error) {
	var records map[string]userRecord
	if err := s.ref.Get(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return flattenRecords(records), nil
}

// CreateUser appends a record under a fresh push key
func (s *FirebaseStore) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	newRef, err := s.ref.Push(ctx, userRecord{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &User{
		ID:    newRef.Key,
		Name:  req.Name,
		Email: req.Email,
	}, nil
}

// DeleteUser removes the child at userID. Missing children are not reported.
func (s *FirebaseStore) DeleteUser(ctx context.Context, userID string) error {
	if err := s.ref.Child(userID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Ping reads the collection path without decoding it
func (s *FirebaseStore) Ping(ctx context.Context) error {
	var discard map[string]any
	if err := s.ref.OrderByKey().LimitToFirst(1).Get(ctx, &discard); err != nil {
		return fmt.Errorf("firebase ping failed: %w", err)
	}
	return nil
}
