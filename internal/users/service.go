package users

import (
	"context"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	store UserStore
}

// NewUserService creates a new user service instance
func NewUserService(store UserStore) *UserServiceImpl {
	return &UserServiceImpl{
		store: store,
	}
}

// ListUsers returns every stored user
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]*User, error) {
	list, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, NewStoreError(OpList, err)
	}
	return list, nil
}

// CreateUser creates a new user after checking that name and email are present
func (s *UserServiceImpl) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if req == nil {
		return nil, NewValidationError("request", "request is required")
	}
	req.Normalize()
	if req.Name == "" {
		return nil, NewValidationError("name", "name is required")
	}
	if req.Email == "" {
		return nil, NewValidationError("email", "email is required")
	}

	user, err := s.store.CreateUser(ctx, req)
	if err != nil {
		return nil, NewStoreError(OpCreate, err)
	}
	return user, nil
}

// DeleteUser deletes a user. Deleting an unknown id is not an error.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return NewValidationError("id", "userID is required")
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return NewStoreError(OpDelete, err)
	}
	return nil
}
