package domain

import (
	"context"
	"time"
)

// User is an account that can be registered for events. Its lifecycle is owned
// outside this service; events only reference users by ID.
// swagger:model User
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, name string, createdAt time.Time) *User {
	return &User{
		Email:     email,
		Name:      name,
		CreatedAt: createdAt,
	}
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
}

// NewUserRequest carries the fields needed to create a user.
type NewUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=2"`
}

// UserService is the operator-facing entry point for managing users.
type UserService interface {
	CreateUser(ctx context.Context, req NewUserRequest) (*User, error)
}
