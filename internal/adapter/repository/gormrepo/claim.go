package gormrepo

import (
	"context"
	"fmt"

	claimDomain "insurance-claims-backend/internal/domain/claim"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClaimRepository struct{ db *gorm.DB }

func NewClaimRepository(db *gorm.DB) *ClaimRepository { return &ClaimRepository{db: db} }

func (r *ClaimRepository) Create(ctx context.Context, c *claimDomain.Claim) error {
	if c.Version == 0 {
		c.Version = 1
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ClaimRepository) GetByClaimID(ctx context.Context, claimID string) (*claimDomain.Claim, error) {
	var out claimDomain.Claim
	res := r.db.WithContext(ctx).Where("claim_id = ?", claimID).First(&out)
	return &out, res.Error
}

// GetByClaimIDForUpdate reads the claim holding a row lock until the
// transaction ends. sqlite has no row locks; its single writer serializes
// the transaction instead.
func (r *ClaimRepository) GetByClaimIDForUpdate(ctx context.Context, claimID string) (*claimDomain.Claim, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out claimDomain.Claim
	res := q.Where("claim_id = ?", claimID).First(&out)
	return &out, res.Error
}

func (r *ClaimRepository) GetByID(ctx context.Context, id uint64) (*claimDomain.Claim, error) {
	var out claimDomain.Claim
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

// Save is a compare-and-swap on the version column. Zero affected rows means
// another writer got there first.
func (r *ClaimRepository) Save(ctx context.Context, c *claimDomain.Claim) error {
	expected := c.Version
	c.Version = expected + 1
	res := r.db.WithContext(ctx).
		Model(c).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "created_at").
		Updates(c)
	if res.Error != nil {
		c.Version = expected
		return res.Error
	}
	if res.RowsAffected == 0 {
		c.Version = expected
		return fmt.Errorf("%w: claim %s was modified concurrently", claimDomain.ErrConflict, c.ClaimID)
	}
	return nil
}

func (r *ClaimRepository) List(ctx context.Context, f claimDomain.ListFilter) ([]claimDomain.Claim, error) {
	var out []claimDomain.Claim
	res := applyFilter(r.db.WithContext(ctx).Model(&claimDomain.Claim{}), f).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *ClaimRepository) CountByStatus(ctx context.Context, f claimDomain.ListFilter) (map[claimDomain.Status]int64, error) {
	var rows []struct {
		Status claimDomain.Status
		N      int64
	}
	res := applyFilter(r.db.WithContext(ctx).Model(&claimDomain.Claim{}), f).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	out := make(map[claimDomain.Status]int64, len(claimDomain.AllStatuses))
	for _, s := range claimDomain.AllStatuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *ClaimRepository) CountByType(ctx context.Context, f claimDomain.ListFilter) (map[uint64]int64, error) {
	var rows []struct {
		ClaimTypeID uint64
		N           int64
	}
	res := applyFilter(r.db.WithContext(ctx).Model(&claimDomain.Claim{}), f).
		Select("claim_type_id, COUNT(*) AS n").
		Group("claim_type_id").
		Scan(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	out := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		out[row.ClaimTypeID] = row.N
	}
	return out, nil
}

func applyFilter(q *gorm.DB, f claimDomain.ListFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ClaimTypeID != 0 {
		q = q.Where("claim_type_id = ?", f.ClaimTypeID)
	}
	if f.ClaimantID != "" {
		q = q.Where("claimant_id = ?", f.ClaimantID)
	}
	if f.ReviewerID != "" {
		q = q.Where("assigned_reviewer_id = ?", f.ReviewerID)
	}
	return q
}

type HistoryRepository struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) *HistoryRepository { return &HistoryRepository{db: db} }

func (r *HistoryRepository) Append(ctx context.Context, t *claimDomain.Transition) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *HistoryRepository) ListByClaim(ctx context.Context, claimNumericID uint64) ([]claimDomain.Transition, error) {
	var out []claimDomain.Transition
	res := r.db.WithContext(ctx).
		Where("claim_id = ?", claimNumericID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
