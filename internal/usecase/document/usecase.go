package document

import (
	"context"
	"errors"
	"fmt"
	"io"

	"insurance-claims-backend/internal/domain/claim"
	domain "insurance-claims-backend/internal/domain/document"
	"insurance-claims-backend/internal/domain/user"
	"insurance-claims-backend/pkg/id"

	"gorm.io/gorm"
)

type Usecase struct {
	claims claim.Repository
	docs   domain.Repository
	blobs  BlobStore
}

func NewUsecase(claims claim.Repository, docs domain.Repository, blobs BlobStore) *Usecase {
	return &Usecase{claims: claims, docs: docs, blobs: blobs}
}

// Download returns the document row and its content when actor may see the
// owning claim: its claimant, its assigned reviewer, or any checker.
func (u *Usecase) Download(ctx context.Context, actor user.Actor, stored string) (*domain.Document, io.ReadCloser, error) {
	if !id.IsStoredKey(stored) {
		return nil, nil, fmt.Errorf("%w: document %s", claim.ErrNotFound, stored)
	}
	d, err := u.docs.GetByStoredFilename(ctx, stored)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: document %s", claim.ErrNotFound, stored)
		}
		return nil, nil, err
	}

	c, err := u.claimByNumericID(ctx, d.ClaimID)
	if err != nil {
		return nil, nil, err
	}
	if !CanView(actor, c) {
		return nil, nil, fmt.Errorf("%w: document belongs to another claim", claim.ErrForbidden)
	}

	rc, err := u.blobs.Open(ctx, d.StoredFilename)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %v", claim.ErrNotFound, err)
		}
		return nil, nil, err
	}
	return d, rc, nil
}

func (u *Usecase) claimByNumericID(ctx context.Context, numericID uint64) (*claim.Claim, error) {
	c, err := u.claims.GetByID(ctx, numericID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: owning claim", claim.ErrNotFound)
	}
	return c, err
}

// CanView is the read rule shared by claim and document endpoints.
func CanView(actor user.Actor, c *claim.Claim) bool {
	switch actor.Role {
	case user.RoleChecker:
		return true
	case user.RoleClaimant:
		return c.ClaimantID == actor.ID
	case user.RoleReviewer:
		return c.AssignedReviewerID != nil && *c.AssignedReviewerID == actor.ID
	}
	return false
}
