package user

import (
	"time"

	"insurance-claims-backend/internal/domain/claimtype"
	domain "insurance-claims-backend/internal/domain/user"
)

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginDTO struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type CreateUserInput struct {
	Username     string   `json:"username" validate:"required,min=3,max=64"`
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password" validate:"required,min=8,max=72"`
	Role         string   `json:"role" validate:"required,oneof=claimant reviewer checker"`
	ClaimTypeIDs []uint64 `json:"claim_type_ids"`
}

// UpdateUserInput leaves nil fields untouched.
type UpdateUserInput struct {
	Email        *string  `json:"email" validate:"omitempty,email"`
	Active       *bool    `json:"active"`
	Role         *string  `json:"role" validate:"omitempty,oneof=claimant reviewer checker"`
	ClaimTypeIDs []uint64 `json:"claim_type_ids"`
}

type UserDTO struct {
	*domain.User
	ClaimTypes []claimtype.ClaimType `json:"claim_types,omitempty"`
}
