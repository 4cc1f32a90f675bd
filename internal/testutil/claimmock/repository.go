package claimmock

import (
	"context"

	domain "insurance-claims-backend/internal/domain/claim"
)

var (
	_ domain.Repository        = (*Repo)(nil)
	_ domain.HistoryRepository = (*HistoryRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn        func(ctx context.Context, c *domain.Claim) error
	GetByClaimIDFn  func(ctx context.Context, claimID string) (*domain.Claim, error)
	GetByIDFn       func(ctx context.Context, id uint64) (*domain.Claim, error)
	SaveFn          func(ctx context.Context, c *domain.Claim) error
	ListFn          func(ctx context.Context, f domain.ListFilter) ([]domain.Claim, error)
	CountByStatusFn func(ctx context.Context, f domain.ListFilter) (map[domain.Status]int64, error)
	CountByTypeFn   func(ctx context.Context, f domain.ListFilter) (map[uint64]int64, error)
}

func (m *Repo) Create(ctx context.Context, c *domain.Claim) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) GetByClaimID(ctx context.Context, claimID string) (*domain.Claim, error) {
	if m.GetByClaimIDFn != nil {
		return m.GetByClaimIDFn(ctx, claimID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Claim, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, c *domain.Claim) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, c)
	}
	c.Version++
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Claim, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) CountByStatus(ctx context.Context, f domain.ListFilter) (map[domain.Status]int64, error) {
	if m.CountByStatusFn != nil {
		return m.CountByStatusFn(ctx, f)
	}
	return map[domain.Status]int64{}, nil
}

func (m *Repo) CountByType(ctx context.Context, f domain.ListFilter) (map[uint64]int64, error) {
	if m.CountByTypeFn != nil {
		return m.CountByTypeFn(ctx, f)
	}
	return map[uint64]int64{}, nil
}

// HistoryRepo records appended transitions unless AppendFn overrides it.
type HistoryRepo struct {
	AppendFn      func(ctx context.Context, t *domain.Transition) error
	ListByClaimFn func(ctx context.Context, claimNumericID uint64) ([]domain.Transition, error)

	Appended []domain.Transition
}

func (m *HistoryRepo) Append(ctx context.Context, t *domain.Transition) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, t)
	}
	m.Appended = append(m.Appended, *t)
	return nil
}

func (m *HistoryRepo) ListByClaim(ctx context.Context, claimNumericID uint64) ([]domain.Transition, error) {
	if m.ListByClaimFn != nil {
		return m.ListByClaimFn(ctx, claimNumericID)
	}
	var out []domain.Transition
	for _, t := range m.Appended {
		if t.ClaimID == claimNumericID {
			out = append(out, t)
		}
	}
	return out, nil
}
