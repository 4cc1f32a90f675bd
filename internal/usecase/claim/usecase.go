package claim

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	domain "insurance-claims-backend/internal/domain/claim"
	"insurance-claims-backend/internal/domain/claimtype"
	"insurance-claims-backend/internal/domain/document"
	"insurance-claims-backend/internal/domain/uow"
	"insurance-claims-backend/internal/domain/user"
	"insurance-claims-backend/internal/infrastructure/logger"
	docuc "insurance-claims-backend/internal/usecase/document"
	"insurance-claims-backend/pkg/id"

	"gorm.io/gorm"
)

// Recorder receives workflow counters; metrics.Metrics implements it.
type Recorder interface {
	RecordTransition(action, result string)
	RecordDocuments(n int)
}

type nopRecorder struct{}

func (nopRecorder) RecordTransition(string, string) {}
func (nopRecorder) RecordDocuments(int)             {}

type Usecase struct {
	claims  domain.Repository
	history domain.HistoryRepository
	docs    document.Repository
	types   claimtype.Repository
	uow     uow.UnitOfWork
	ledger  *docuc.Ledger
	metrics Recorder
	log     *logger.Logger
	now     func() time.Time
}

type Option func(*Usecase)

func WithLogger(l *logger.Logger) Option    { return func(u *Usecase) { u.log = l } }
func WithRecorder(r Recorder) Option        { return func(u *Usecase) { u.metrics = r } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

// NewUsecase: repos for reads, a UoW for every write.
func NewUsecase(r uow.Repos, tx uow.UnitOfWork, ledger *docuc.Ledger, opts ...Option) *Usecase {
	u := &Usecase{
		claims:  r.Claims,
		history: r.History,
		docs:    r.Documents,
		types:   r.ClaimTypes,
		uow:     tx,
		ledger:  ledger,
		metrics: nopRecorder{},
		log:     logger.NewNop(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Submit files a new claim with its claimant documents in one transaction.
func (u *Usecase) Submit(ctx context.Context, actor user.Actor, in SubmitInput) (*ClaimDTO, error) {
	c, tr, err := domain.New(actor, domain.NewClaimInput{
		ClaimTypeID:  in.ClaimTypeID,
		IncidentDate: in.IncidentDate,
		Description:  in.Description,
	}, u.now())
	if err != nil {
		return nil, u.done(domain.ActionSubmit, err)
	}
	if err := u.checkEntitled(ctx, actor, in.ClaimTypeID); err != nil {
		return nil, u.done(domain.ActionSubmit, err)
	}

	staged, err := u.ledger.Stage(ctx, document.OriginClaimant, actor.ID, in.Documents)
	if err != nil {
		return nil, u.done(domain.ActionSubmit, err)
	}

	c.ClaimID = id.NewID32()
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Claims.Create(ctx, c); err != nil {
			return err
		}
		tr.ClaimID = c.ID
		if err := r.History.Append(ctx, tr); err != nil {
			return err
		}
		return u.ledger.Attach(ctx, r.Documents, c, staged)
	})
	if err != nil {
		u.ledger.Discard(ctx, staged)
		return nil, u.done(domain.ActionSubmit, err)
	}

	u.afterWrite(domain.ActionSubmit, c, actor, staged)
	return u.view(ctx, actor, c.ClaimID)
}

func (u *Usecase) checkEntitled(ctx context.Context, actor user.Actor, typeID uint64) error {
	allowed, err := u.types.AllowedForUser(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !claimtype.Allows(allowed, typeID) {
		return fmt.Errorf("%w: claim type %d is not available to you", domain.ErrValidation, typeID)
	}
	return nil
}

// SubmitForApproval records the reviewer's recommendation and attaches the
// review documents. Files are checked before the claim is touched.
func (u *Usecase) SubmitForApproval(ctx context.Context, actor user.Actor, in ReviewInput) (*ClaimDTO, error) {
	if err := u.ledger.Validate(document.OriginReviewer, in.Documents); err != nil {
		return nil, u.done(domain.ActionSubmitForApproval, err)
	}

	var staged *docuc.Staged
	var out *domain.Claim
	err := u.uow.WithinClaimTx(ctx, in.ClaimID, func(r uow.Repos, c *domain.Claim) error {
		if err := checkVersion(c, in.ExpectedVersion); err != nil {
			return err
		}
		tr, err := domain.SubmitForApproval(c, actor, domain.SubmissionInput{
			ReviewerNotes:            in.ReviewerNotes,
			ProposedSettlementAmount: in.SettlementAmount,
		}, u.now())
		if err != nil {
			return err
		}
		staged, err = u.ledger.Stage(ctx, document.OriginReviewer, actor.ID, in.Documents)
		if err != nil {
			return err
		}
		if err := u.ledger.Attach(ctx, r.Documents, c, staged); err != nil {
			return err
		}
		out = c
		return u.persist(ctx, r, c, tr)
	})
	if err != nil {
		u.ledger.Discard(ctx, staged)
		return nil, u.done(domain.ActionSubmitForApproval, err)
	}

	u.afterWrite(domain.ActionSubmitForApproval, out, actor, staged)
	return u.view(ctx, actor, in.ClaimID)
}

func (u *Usecase) Approve(ctx context.Context, actor user.Actor, in ApproveInput) (*ClaimDTO, error) {
	return u.finalize(ctx, actor, domain.ActionApprove, in.ClaimID, in.ExpectedVersion, func(c *domain.Claim) (*domain.Transition, error) {
		return domain.Approve(c, actor, in.SettlementAmount, u.now())
	})
}

func (u *Usecase) Deny(ctx context.Context, actor user.Actor, in DenyInput) (*ClaimDTO, error) {
	return u.finalize(ctx, actor, domain.ActionDeny, in.ClaimID, in.ExpectedVersion, func(c *domain.Claim) (*domain.Transition, error) {
		return domain.Deny(c, actor, in.DenialReason, u.now())
	})
}

func (u *Usecase) finalize(ctx context.Context, actor user.Actor, a domain.Action, claimID string, expected *uint,
	apply func(c *domain.Claim) (*domain.Transition, error)) (*ClaimDTO, error) {
	var out *domain.Claim
	err := u.uow.WithinClaimTx(ctx, claimID, func(r uow.Repos, c *domain.Claim) error {
		if err := checkVersion(c, expected); err != nil {
			return err
		}
		tr, err := apply(c)
		if err != nil {
			return err
		}
		out = c
		return u.persist(ctx, r, c, tr)
	})
	if err != nil {
		return nil, u.done(a, err)
	}
	u.afterWrite(a, out, actor, nil)
	return u.view(ctx, actor, claimID)
}

// persist writes the claim under the version check and appends the audit
// row in the same transaction.
func (u *Usecase) persist(ctx context.Context, r uow.Repos, c *domain.Claim, tr *domain.Transition) error {
	if err := r.Claims.Save(ctx, c); err != nil {
		return err
	}
	return r.History.Append(ctx, tr)
}

func checkVersion(c *domain.Claim, expected *uint) error {
	if expected != nil && *expected != c.Version {
		return fmt.Errorf("%w: claim %s is at version %d, not %d", domain.ErrConflict, c.ClaimID, c.Version, *expected)
	}
	return nil
}

func (u *Usecase) afterWrite(a domain.Action, c *domain.Claim, actor user.Actor, staged *docuc.Staged) {
	u.metrics.RecordTransition(string(a), "ok")
	n := 0
	if !staged.Empty() {
		n = len(staged.Docs)
		u.metrics.RecordDocuments(n)
	}
	u.log.Info("claim transition",
		"claim_id", c.ClaimID,
		"action", string(a),
		"status", string(c.Status),
		"actor_id", actor.ID,
		"actor_role", string(actor.Role),
		"documents", n,
	)
}

// done normalizes err for callers and counts the failed attempt.
func (u *Usecase) done(a domain.Action, err error) error {
	err = mapErr(err)
	u.metrics.RecordTransition(string(a), resultLabel(err))
	if resultLabel(err) == "error" {
		u.log.Error("claim transition failed", "action", string(a), "error", err)
	}
	return err
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return err
}

var resultLabels = []struct {
	err   error
	label string
}{
	{domain.ErrInvalidTransition, "invalid_transition"},
	{domain.ErrReviewerUnavailable, "reviewer_unavailable"},
	{domain.ErrClaimNotAssignable, "not_assignable"},
	{domain.ErrValidation, "validation"},
	{document.ErrFileValidation, "file_validation"},
	{domain.ErrNotFound, "not_found"},
	{domain.ErrForbidden, "forbidden"},
	{domain.ErrConflict, "conflict"},
}

func resultLabel(err error) string {
	for _, l := range resultLabels {
		if errors.Is(err, l.err) {
			return l.label
		}
	}
	return "error"
}

// ----- reads -----

func (u *Usecase) ListForClaimant(ctx context.Context, actor user.Actor) ([]ClaimDTO, error) {
	return u.list(ctx, actor, domain.ListFilter{ClaimantID: actor.ID})
}

func (u *Usecase) ListForReviewer(ctx context.Context, actor user.Actor) ([]ClaimDTO, error) {
	return u.list(ctx, actor, domain.ListFilter{ReviewerID: actor.ID})
}

func (u *Usecase) ListForChecker(ctx context.Context, actor user.Actor, f domain.ListFilter) ([]ClaimDTO, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, f.Status)
	}
	return u.list(ctx, actor, f)
}

func (u *Usecase) list(ctx context.Context, actor user.Actor, f domain.ListFilter) ([]ClaimDTO, error) {
	claims, err := u.claims.List(ctx, f)
	if err != nil {
		return nil, err
	}
	names, err := u.typeNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ClaimDTO, 0, len(claims))
	for i := range claims {
		c := &claims[i]
		out = append(out, ClaimDTO{
			Claim:          c,
			ClaimTypeName:  names[c.ClaimTypeID],
			AllowedActions: domain.AllowedActions(c.Status, actor.Role),
		})
	}
	return out, nil
}

// Get returns one claim with its documents if actor may see it.
func (u *Usecase) Get(ctx context.Context, actor user.Actor, claimID string) (*ClaimDTO, error) {
	return u.view(ctx, actor, claimID)
}

func (u *Usecase) view(ctx context.Context, actor user.Actor, claimID string) (*ClaimDTO, error) {
	c, err := u.claims.GetByClaimID(ctx, claimID)
	if err != nil {
		return nil, mapErr(err)
	}
	if !docuc.CanView(actor, c) {
		return nil, fmt.Errorf("%w: claim %s is not yours", domain.ErrForbidden, claimID)
	}
	docs, err := u.docs.ListByClaim(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	claimant, review := document.SplitByOrigin(docs)
	dto := &ClaimDTO{
		Claim:           c,
		Documents:       nonNil(claimant),
		ReviewDocuments: nonNil(review),
		AllowedActions:  domain.AllowedActions(c.Status, actor.Role),
	}
	if t, err := u.types.GetByID(ctx, c.ClaimTypeID); err == nil {
		dto.ClaimTypeName = t.Name
	}
	return dto, nil
}

func nonNil(d []document.Document) []document.Document {
	if d == nil {
		return []document.Document{}
	}
	return d
}

// History returns the audit trail, oldest first.
func (u *Usecase) History(ctx context.Context, actor user.Actor, claimID string) ([]domain.Transition, error) {
	c, err := u.claims.GetByClaimID(ctx, claimID)
	if err != nil {
		return nil, mapErr(err)
	}
	if !docuc.CanView(actor, c) {
		return nil, fmt.Errorf("%w: claim %s is not yours", domain.ErrForbidden, claimID)
	}
	return u.history.ListByClaim(ctx, c.ID)
}

// Stats counts the claims the actor can see.
func (u *Usecase) Stats(ctx context.Context, actor user.Actor) (*StatsDTO, error) {
	var f domain.ListFilter
	switch actor.Role {
	case user.RoleClaimant:
		f.ClaimantID = actor.ID
	case user.RoleReviewer:
		f.ReviewerID = actor.ID
	}
	byStatus, err := u.claims.CountByStatus(ctx, f)
	if err != nil {
		return nil, err
	}
	byType, err := u.claims.CountByType(ctx, f)
	if err != nil {
		return nil, err
	}
	names, err := u.typeNames(ctx)
	if err != nil {
		return nil, err
	}

	out := &StatsDTO{ByStatus: byStatus, ByType: make([]TypeCount, 0, len(byType))}
	for _, n := range byStatus {
		out.Total += n
	}
	for tid, n := range byType {
		out.ByType = append(out.ByType, TypeCount{ClaimTypeID: tid, Name: names[tid], Count: n})
	}
	sort.Slice(out.ByType, func(i, j int) bool { return out.ByType[i].ClaimTypeID < out.ByType[j].ClaimTypeID })
	return out, nil
}

func (u *Usecase) typeNames(ctx context.Context) (map[uint64]string, error) {
	types, err := u.types.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]string, len(types))
	for _, t := range types {
		out[t.ID] = t.Name
	}
	return out, nil
}
