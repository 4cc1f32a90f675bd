package claimtype

import "context"

type Repository interface {
	Create(ctx context.Context, t *ClaimType) error
	GetByID(ctx context.Context, id uint64) (*ClaimType, error)
	ListActive(ctx context.Context) ([]ClaimType, error)
	// AllowedForUser returns the active types a claimant is entitled to.
	AllowedForUser(ctx context.Context, userID string) ([]ClaimType, error)
	SetEntitlements(ctx context.Context, userID string, typeIDs []uint64) error
}
