package claimtypemock

import (
	"context"

	domain "insurance-claims-backend/internal/domain/claimtype"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn          func(ctx context.Context, t *domain.ClaimType) error
	GetByIDFn         func(ctx context.Context, id uint64) (*domain.ClaimType, error)
	ListActiveFn      func(ctx context.Context) ([]domain.ClaimType, error)
	AllowedForUserFn  func(ctx context.Context, userID string) ([]domain.ClaimType, error)
	SetEntitlementsFn func(ctx context.Context, userID string, typeIDs []uint64) error
}

func (m *Repo) Create(ctx context.Context, t *domain.ClaimType) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.ClaimType, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) ListActive(ctx context.Context) ([]domain.ClaimType, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, nil
}

func (m *Repo) AllowedForUser(ctx context.Context, userID string) ([]domain.ClaimType, error) {
	if m.AllowedForUserFn != nil {
		return m.AllowedForUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *Repo) SetEntitlements(ctx context.Context, userID string, typeIDs []uint64) error {
	if m.SetEntitlementsFn != nil {
		return m.SetEntitlementsFn(ctx, userID, typeIDs)
	}
	return nil
}
