package gormrepo

import (
	"context"

	claimDomain "insurance-claims-backend/internal/domain/claim"
	"insurance-claims-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// NewRepos binds every repository to db, outside any transaction.
func NewRepos(db *gorm.DB) uow.Repos { return reposFor(db) }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Claims:     &ClaimRepository{db: tx},
		History:    &HistoryRepository{db: tx},
		Documents:  &DocumentRepository{db: tx},
		Users:      &UserRepository{db: tx},
		ClaimTypes: &ClaimTypeRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinClaimTx(ctx context.Context, claimID string, fn func(r uow.Repos, c *claimDomain.Claim) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the claim row before any guard runs
		c, err := r.Claims.(*ClaimRepository).GetByClaimIDForUpdate(ctx, claimID)
		if err != nil {
			return err
		}
		return fn(r, c)
	})
}
