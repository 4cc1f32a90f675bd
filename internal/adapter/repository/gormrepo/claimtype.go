package gormrepo

import (
	"context"

	ctDomain "insurance-claims-backend/internal/domain/claimtype"

	"gorm.io/gorm"
)

type ClaimTypeRepository struct{ db *gorm.DB }

func NewClaimTypeRepository(db *gorm.DB) *ClaimTypeRepository { return &ClaimTypeRepository{db: db} }

func (r *ClaimTypeRepository) Create(ctx context.Context, t *ctDomain.ClaimType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *ClaimTypeRepository) GetByID(ctx context.Context, id uint64) (*ctDomain.ClaimType, error) {
	var out ctDomain.ClaimType
	res := r.db.WithContext(ctx).First(&out, id)
	return &out, res.Error
}

func (r *ClaimTypeRepository) ListActive(ctx context.Context) ([]ctDomain.ClaimType, error) {
	var out []ctDomain.ClaimType
	res := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&out)
	return out, res.Error
}

func (r *ClaimTypeRepository) AllowedForUser(ctx context.Context, userID string) ([]ctDomain.ClaimType, error) {
	var out []ctDomain.ClaimType
	res := r.db.WithContext(ctx).
		Joins("JOIN user_claim_types uct ON uct.claim_type_id = claim_types.id").
		Where("uct.user_id = ? AND claim_types.active = ?", userID, true).
		Order("claim_types.name ASC").
		Find(&out)
	return out, res.Error
}

// SetEntitlements replaces the user's entitlements. Callers wanting atomicity
// with other writes run it inside a UnitOfWork.
func (r *ClaimTypeRepository) SetEntitlements(ctx context.Context, userID string, typeIDs []uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Delete(&ctDomain.Entitlement{}).Error; err != nil {
		return err
	}
	if len(typeIDs) == 0 {
		return nil
	}
	rows := make([]ctDomain.Entitlement, 0, len(typeIDs))
	for _, id := range typeIDs {
		rows = append(rows, ctDomain.Entitlement{UserID: userID, ClaimTypeID: id})
	}
	return db.Create(&rows).Error
}
