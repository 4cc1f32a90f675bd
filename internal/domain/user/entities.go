package user

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Role is the single capability a user holds. Roles are disjoint: a reviewer
// is never a checker and vice versa.
type Role string

const (
	RoleClaimant Role = "claimant"
	RoleReviewer Role = "reviewer"
	RoleChecker  Role = "checker"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClaimant, RoleReviewer, RoleChecker:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q (want claimant, reviewer or checker)", ErrInvalidRole, s)
	}
	return r, nil
}

// Actor is the authenticated caller of a workflow operation.
type Actor struct {
	ID   string // public user id
	Role Role
}

type User struct {
	ID           uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID       string    `gorm:"size:32;uniqueIndex:ux_users_user_id" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex:ux_users_username" json:"username"`
	Email        string    `gorm:"size:255" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Role         Role      `gorm:"size:16;index" json:"role"`
	Active       bool      `gorm:"not null" json:"active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// IsAvailableReviewer reports whether the user can take a claim assignment.
func (u *User) IsAvailableReviewer() bool {
	return u != nil && u.Role == RoleReviewer && u.Active
}

func (u *User) Actor() Actor { return Actor{ID: u.UserID, Role: u.Role} }
