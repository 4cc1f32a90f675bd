package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	GetByUserID(ctx context.Context, userID string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// List returns users ordered by username; an empty role lists every role.
	List(ctx context.Context, role Role, activeOnly bool) ([]User, error)
}
