package claim

import "context"

type Repository interface {
	Create(ctx context.Context, c *Claim) error
	GetByClaimID(ctx context.Context, claimID string) (*Claim, error)
	GetByID(ctx context.Context, id uint64) (*Claim, error)
	// Save writes c only if the stored version still equals c.Version, then
	// bumps c.Version. A stale write returns ErrConflict.
	Save(ctx context.Context, c *Claim) error
	List(ctx context.Context, f ListFilter) ([]Claim, error)
	CountByStatus(ctx context.Context, f ListFilter) (map[Status]int64, error)
	CountByType(ctx context.Context, f ListFilter) (map[uint64]int64, error)
}

type HistoryRepository interface {
	Append(ctx context.Context, t *Transition) error
	ListByClaim(ctx context.Context, claimNumericID uint64) ([]Transition, error)
}
