package documentmock

import (
	"context"

	domain "insurance-claims-backend/internal/domain/document"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository. Without
// overrides it keeps created rows in memory.
type Repo struct {
	CreateBatchFn         func(ctx context.Context, docs []domain.Document) error
	ListByClaimFn         func(ctx context.Context, claimNumericID uint64) ([]domain.Document, error)
	GetByStoredFilenameFn func(ctx context.Context, stored string) (*domain.Document, error)

	Rows []domain.Document
}

func (m *Repo) CreateBatch(ctx context.Context, docs []domain.Document) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, docs)
	}
	m.Rows = append(m.Rows, docs...)
	return nil
}

func (m *Repo) ListByClaim(ctx context.Context, claimNumericID uint64) ([]domain.Document, error) {
	if m.ListByClaimFn != nil {
		return m.ListByClaimFn(ctx, claimNumericID)
	}
	var out []domain.Document
	for _, d := range m.Rows {
		if d.ClaimID == claimNumericID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Repo) GetByStoredFilename(ctx context.Context, stored string) (*domain.Document, error) {
	if m.GetByStoredFilenameFn != nil {
		return m.GetByStoredFilenameFn(ctx, stored)
	}
	for i := range m.Rows {
		if m.Rows[i].StoredFilename == stored {
			d := m.Rows[i]
			return &d, nil
		}
	}
	return nil, context.Canceled
}
