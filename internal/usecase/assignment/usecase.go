package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"insurance-claims-backend/internal/domain/claim"
	"insurance-claims-backend/internal/domain/uow"
	"insurance-claims-backend/internal/domain/user"
	"insurance-claims-backend/internal/infrastructure/logger"

	"gorm.io/gorm"
)

type Recorder interface {
	RecordTransition(action, result string)
}

type AssignInput struct {
	ClaimID         string `json:"-"`
	ReviewerID      string `json:"reviewer_id" validate:"required,hex32"`
	ExpectedVersion *uint  `json:"-"`
}

type Usecase struct {
	uow     uow.UnitOfWork
	metrics Recorder
	log     *logger.Logger
	now     func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, rec Recorder, log *logger.Logger) *Usecase {
	if log == nil {
		log = logger.NewNop()
	}
	return &Usecase{uow: tx, metrics: rec, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Assign hands a Pending claim to a reviewer chosen by the checker. The
// reviewer is looked up inside the same transaction as the claim write.
func (u *Usecase) Assign(ctx context.Context, actor user.Actor, in AssignInput) (*claim.Claim, error) {
	var out *claim.Claim
	err := u.uow.WithinClaimTx(ctx, in.ClaimID, func(r uow.Repos, c *claim.Claim) error {
		if in.ExpectedVersion != nil && *in.ExpectedVersion != c.Version {
			return fmt.Errorf("%w: claim %s is at version %d", claim.ErrConflict, c.ClaimID, c.Version)
		}
		reviewer, err := r.Users.GetByUserID(ctx, in.ReviewerID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			reviewer = nil
		case err != nil:
			return err
		}

		tr, err := claim.Assign(c, actor, reviewer, u.now())
		if err != nil {
			return err
		}
		if err := r.Claims.Save(ctx, c); err != nil {
			return err
		}
		if err := r.History.Append(ctx, tr); err != nil {
			return err
		}
		out = c
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = fmt.Errorf("%w: claim %s", claim.ErrNotFound, in.ClaimID)
	}
	u.record(err)
	if err != nil {
		return nil, err
	}
	u.log.Info("claim assigned", "claim_id", out.ClaimID, "reviewer_id", in.ReviewerID, "actor_id", actor.ID)
	return out, nil
}

func (u *Usecase) record(err error) {
	if u.metrics == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, claim.ErrClaimNotAssignable):
		result = "not_assignable"
	case errors.Is(err, claim.ErrReviewerUnavailable):
		result = "reviewer_unavailable"
	case errors.Is(err, claim.ErrInvalidTransition):
		result = "invalid_transition"
	case errors.Is(err, claim.ErrConflict):
		result = "conflict"
	case errors.Is(err, claim.ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	u.metrics.RecordTransition(string(claim.ActionAssign), result)
}
