package users

import (
	"sort"
	"strings"
)

// User is a single record in the users collection. ID is assigned by the store.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUserRequest represents the submitted add-user form
type CreateUserRequest struct {
	Name  string `form:"name" json:"name"`
	Email string `form:"email" json:"email"`
}

// Normalize trims surrounding whitespace from both fields
func (r *CreateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

// userRecord is the stored value under a generated key
type userRecord struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// flattenRecords turns a key -> record mapping into users ordered by key.
func flattenRecords(records map[string]userRecord) []*User {
	result := make([]*User, 0, len(records))
	for id, rec := range records {
		result = append(result, &User{
			ID:    id,
			Name:  rec.Name,
			Email: rec.Email,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}
