// Package models contains the domain structures of the diary backend and
// the request DTOs accepted by the HTTP layer.
package models

import "time"

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a registered account.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	Role           string // admin or user
	IsActive       bool
	IsBlocked      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Profile holds the personalization attributes of a user. All fields are
// optional; Country feeds AI model selection, the rest feed prompt building.
type Profile struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"user_id"`
	Nickname          *string    `json:"nickname"`
	BirthDate         *time.Time `json:"birth_date"`
	Gender            *string    `json:"gender"`
	Job               *string    `json:"job"`
	Hobbies           *string    `json:"hobbies"`
	FamilyComposition *string    `json:"family_composition"`
	Pets              *string    `json:"pets"`
	Country           *string    `json:"country"`
}

// SignupRequest is the JSON body of POST /auth/api/signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the JSON body of POST /auth/api/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the JSON body of PUT /auth/api/profile.
// Only the provided fields are updated.
type UpdateProfileRequest struct {
	Nickname          *string `json:"nickname" validate:"omitempty,max=50"`
	BirthDate         *string `json:"birth_date"` // 2006-01-02
	Gender            *string `json:"gender" validate:"omitempty,oneof=male female other prefer_not_to_say"`
	Job               *string `json:"job" validate:"omitempty,max=100"`
	Hobbies           *string `json:"hobbies"`
	FamilyComposition *string `json:"family_composition" validate:"omitempty,max=200"`
	Pets              *string `json:"pets" validate:"omitempty,max=200"`
	Country           *string `json:"country" validate:"omitempty,len=2"`
}

// UpdateUserStatusRequest is the JSON body of PATCH /admin/api/users/{id}.
type UpdateUserStatusRequest struct {
	Role      *string `json:"role" validate:"omitempty,oneof=admin user"`
	IsActive  *bool   `json:"is_active"`
	IsBlocked *bool   `json:"is_blocked"`
}
