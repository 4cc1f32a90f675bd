package uow

import (
	"context"

	"insurance-claims-backend/internal/domain/claim"
	"insurance-claims-backend/internal/domain/claimtype"
	"insurance-claims-backend/internal/domain/document"
	"insurance-claims-backend/internal/domain/user"
)

// Repos is the set of repositories bound to one transaction.
type Repos struct {
	Claims     claim.Repository
	History    claim.HistoryRepository
	Documents  document.Repository
	Users      user.Repository
	ClaimTypes claimtype.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// loads the claim first, then passes it in; writes go through the
	// version check in claim.Repository.Save
	WithinClaimTx(ctx context.Context, claimID string, fn func(r Repos, c *claim.Claim) error) error
}
