package claim

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"insurance-claims-backend/internal/domain/user"
)

type Action string

const (
	ActionSubmit            Action = "submit"
	ActionAssign            Action = "assign"
	ActionSubmitForApproval Action = "submit_for_approval"
	ActionApprove           Action = "approve"
	ActionDeny              Action = "deny"
)

type rule struct {
	from Status
	to   Status
	role user.Role
}

// transitions is the whole lifecycle. Submit has no source status: it creates
// the claim.
var transitions = map[Action]rule{
	ActionSubmit:            {from: "", to: StatusPending, role: user.RoleClaimant},
	ActionAssign:            {from: StatusPending, to: StatusUnderReview, role: user.RoleChecker},
	ActionSubmitForApproval: {from: StatusUnderReview, to: StatusPendingApproval, role: user.RoleReviewer},
	ActionApprove:           {from: StatusPendingApproval, to: StatusApproved, role: user.RoleChecker},
	ActionDeny:              {from: StatusPendingApproval, to: StatusDenied, role: user.RoleChecker},
}

// NextStatus returns the status reached by applying a from the given status.
func NextStatus(from Status, a Action) (Status, bool) {
	r, ok := transitions[a]
	if !ok || r.from != from {
		return "", false
	}
	return r.to, true
}

// CanTransition reports whether role may apply a to a claim in status from.
func CanTransition(from Status, a Action, role user.Role) bool {
	r, ok := transitions[a]
	return ok && r.from == from && r.role == role
}

// AllowedActions lists what role can do next on a claim in status s.
func AllowedActions(s Status, role user.Role) []Action {
	var out []Action
	for _, a := range []Action{ActionAssign, ActionSubmitForApproval, ActionApprove, ActionDeny} {
		if CanTransition(s, a, role) {
			out = append(out, a)
		}
	}
	return out
}

type NewClaimInput struct {
	ClaimTypeID  uint64
	IncidentDate time.Time
	Description  string
}

type SubmissionInput struct {
	ReviewerNotes            string
	ProposedSettlementAmount *float64
}

func requireRole(a Action, actor user.Actor) error {
	if actor.Role != transitions[a].role {
		return fmt.Errorf("%w: %s cannot %s", ErrInvalidTransition, actor.Role, a)
	}
	return nil
}

func requireStatus(c *Claim, a Action) error {
	if c.Status != transitions[a].from {
		return fmt.Errorf("%w: cannot %s a claim in status %q", ErrInvalidTransition, a, c.Status)
	}
	return nil
}

func record(c *Claim, a Action, actor user.Actor, from *Status, note string) *Transition {
	return &Transition{
		ClaimID:    c.ID,
		FromStatus: from,
		ToStatus:   c.Status,
		Action:     a,
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Note:       note,
	}
}

// New builds a Pending claim for a claimant. The caller assigns ClaimID.
func New(actor user.Actor, in NewClaimInput, now time.Time) (*Claim, *Transition, error) {
	if in.ClaimTypeID == 0 {
		return nil, nil, fmt.Errorf("%w: claim type is required", ErrValidation)
	}
	if in.IncidentDate.IsZero() {
		return nil, nil, fmt.Errorf("%w: incident date is required", ErrValidation)
	}
	if in.IncidentDate.After(now) {
		return nil, nil, fmt.Errorf("%w: incident date cannot be in the future", ErrValidation)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if err := requireRole(ActionSubmit, actor); err != nil {
		return nil, nil, err
	}
	c := &Claim{
		ClaimantID:   actor.ID,
		ClaimTypeID:  in.ClaimTypeID,
		Status:       StatusPending,
		Description:  strings.TrimSpace(in.Description),
		IncidentDate: in.IncidentDate.UTC(),
		Version:      1,
	}
	return c, record(c, ActionSubmit, actor, nil, ""), nil
}

// Assign moves a Pending claim to Under Review with the given reviewer.
func Assign(c *Claim, actor user.Actor, reviewer *user.User, now time.Time) (*Transition, error) {
	if err := requireRole(ActionAssign, actor); err != nil {
		return nil, err
	}
	if c.Status != StatusPending || c.AssignedReviewerID != nil {
		return nil, fmt.Errorf("%w: claim %s is %q", ErrClaimNotAssignable, c.ClaimID, c.Status)
	}
	if !reviewer.IsAvailableReviewer() {
		return nil, fmt.Errorf("%w: reviewer is not an active reviewer", ErrReviewerUnavailable)
	}

	from := c.Status
	rid := reviewer.UserID
	c.AssignedReviewerID = &rid
	c.Status = StatusUnderReview
	c.UpdatedAt = now
	return record(c, ActionAssign, actor, &from, "assigned to "+rid), nil
}

// SubmitForApproval records the reviewer's recommendation.
func SubmitForApproval(c *Claim, actor user.Actor, in SubmissionInput, now time.Time) (*Transition, error) {
	notes := strings.TrimSpace(in.ReviewerNotes)
	if notes == "" {
		return nil, fmt.Errorf("%w: reviewer notes are required", ErrValidation)
	}
	if in.ProposedSettlementAmount != nil {
		if err := ValidateAmount(*in.ProposedSettlementAmount); err != nil {
			return nil, err
		}
	}
	if err := requireRole(ActionSubmitForApproval, actor); err != nil {
		return nil, err
	}
	if c.AssignedReviewerID == nil || *c.AssignedReviewerID != actor.ID {
		return nil, fmt.Errorf("%w: claim %s is not assigned to you", ErrForbidden, c.ClaimID)
	}
	if err := requireStatus(c, ActionSubmitForApproval); err != nil {
		return nil, err
	}

	from := c.Status
	at := now
	c.ReviewerNotes = &notes
	c.ProposedSettlementAmount = copyAmount(in.ProposedSettlementAmount)
	c.SubmittedForApprovalAt = &at
	c.Status = StatusPendingApproval
	c.UpdatedAt = now
	return record(c, ActionSubmitForApproval, actor, &from, notes), nil
}

// Approve finalizes the claim. Without an explicit amount the reviewer's
// proposal is settled.
func Approve(c *Claim, actor user.Actor, amount *float64, now time.Time) (*Transition, error) {
	if amount != nil {
		if err := ValidateAmount(*amount); err != nil {
			return nil, err
		}
	}
	if err := checkFinalizer(c, ActionApprove, actor); err != nil {
		return nil, err
	}

	from := c.Status
	settled := copyAmount(amount)
	if settled == nil {
		settled = copyAmount(c.ProposedSettlementAmount)
	}
	finalize(c, actor, now)
	c.SettlementAmount = settled
	c.Status = StatusApproved
	return record(c, ActionApprove, actor, &from, ""), nil
}

func Deny(c *Claim, actor user.Actor, reason string, now time.Time) (*Transition, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: denial reason is required", ErrValidation)
	}
	if err := checkFinalizer(c, ActionDeny, actor); err != nil {
		return nil, err
	}

	from := c.Status
	finalize(c, actor, now)
	c.DenialReason = &reason
	c.Status = StatusDenied
	return record(c, ActionDeny, actor, &from, reason), nil
}

// checkFinalizer enforces maker-checker separation on top of the role check.
func checkFinalizer(c *Claim, a Action, actor user.Actor) error {
	if err := requireRole(a, actor); err != nil {
		return err
	}
	if c.AssignedReviewerID != nil && *c.AssignedReviewerID == actor.ID {
		return fmt.Errorf("%w: the reviewer of a claim cannot finalize it", ErrForbidden)
	}
	return requireStatus(c, a)
}

func finalize(c *Claim, actor user.Actor, now time.Time) {
	by := actor.ID
	at := now
	c.FinalActionByUserID = &by
	c.FinalActionAt = &at
	c.UpdatedAt = now
}

// ValidateAmount accepts finite, non-negative values with at most 2 decimals.
func ValidateAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: amount must be a number", ErrValidation)
	}
	if v < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	if math.Abs(v-math.Round(v*100)/100) > 1e-9 {
		return fmt.Errorf("%w: amount must have at most 2 decimal places", ErrValidation)
	}
	return nil
}

// ParseAmount parses form input. Blank input means "not provided".
func ParseAmount(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q is not numeric", ErrValidation, raw)
	}
	if err := ValidateAmount(v); err != nil {
		return nil, err
	}
	return &v, nil
}

func copyAmount(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
