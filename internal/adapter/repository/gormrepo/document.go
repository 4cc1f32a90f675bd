package gormrepo

import (
	"context"

	docDomain "insurance-claims-backend/internal/domain/document"

	"gorm.io/gorm"
)

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) CreateBatch(ctx context.Context, docs []docDomain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&docs).Error
}

func (r *DocumentRepository) ListByClaim(ctx context.Context, claimNumericID uint64) ([]docDomain.Document, error) {
	var out []docDomain.Document
	res := r.db.WithContext(ctx).
		Where("claim_id = ?", claimNumericID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *DocumentRepository) GetByStoredFilename(ctx context.Context, stored string) (*docDomain.Document, error) {
	var out docDomain.Document
	res := r.db.WithContext(ctx).Where("stored_filename = ?", stored).First(&out)
	return &out, res.Error
}
