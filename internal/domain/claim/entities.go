package claim

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending         Status = "Pending"
	StatusUnderReview     Status = "Under Review"
	StatusPendingApproval Status = "Pending Approval"
	StatusApproved        Status = "Approved"
	StatusDenied          Status = "Denied"
)

// AllStatuses lists every observable status in lifecycle order.
var AllStatuses = []Status{
	StatusPending,
	StatusUnderReview,
	StatusPendingApproval,
	StatusApproved,
	StatusDenied,
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool { return s == StatusApproved || s == StatusDenied }

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
	return st, nil
}

type Claim struct {
	ID                       uint64     `gorm:"primaryKey;column:id" json:"-"`
	ClaimID                  string     `gorm:"size:32;uniqueIndex:ux_claims_claim_id" json:"id"`
	ClaimantID               string     `gorm:"size:32;index:idx_claims_claimant" json:"claimant_id"`
	ClaimTypeID              uint64     `gorm:"index" json:"claim_type_id"`
	Status                   Status     `gorm:"type:varchar(20);index:idx_claims_status;default:'Pending'" json:"status"`
	Description              string     `gorm:"type:text" json:"description"`
	IncidentDate             time.Time  `gorm:"type:date" json:"incident_date"`
	AssignedReviewerID       *string    `gorm:"size:32;index:idx_claims_reviewer" json:"assigned_reviewer_id"`
	ReviewerNotes            *string    `gorm:"type:text" json:"reviewer_notes"`
	ProposedSettlementAmount *float64   `gorm:"type:decimal(12,2)" json:"proposed_settlement_amount"`
	FinalActionByUserID      *string    `gorm:"size:32" json:"final_action_by_user_id"`
	FinalActionAt            *time.Time `json:"final_action_at"`
	DenialReason             *string    `gorm:"type:text" json:"denial_reason"`
	SettlementAmount         *float64   `gorm:"type:decimal(12,2)" json:"settlement_amount"`
	SubmittedForApprovalAt   *time.Time `json:"submitted_for_approval_at"`
	Version                  uint       `gorm:"not null;default:1" json:"version"`
	CreatedAt                time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Claim) TableName() string { return "claims" }

// CheckConsistency reports whether the optional fields agree with the status.
func (c *Claim) CheckConsistency() error {
	if !c.Status.Valid() {
		return fmt.Errorf("claim %s: unknown status %q", c.ClaimID, c.Status)
	}
	assigned := c.AssignedReviewerID != nil
	reviewed := c.ReviewerNotes != nil && c.SubmittedForApprovalAt != nil
	final := c.FinalActionByUserID != nil && c.FinalActionAt != nil

	switch c.Status {
	case StatusPending:
		if assigned || reviewed || final {
			return fmt.Errorf("claim %s: pending claim carries review data", c.ClaimID)
		}
	case StatusUnderReview:
		if !assigned || reviewed || final {
			return fmt.Errorf("claim %s: under review needs a reviewer and no submission", c.ClaimID)
		}
	case StatusPendingApproval:
		if !assigned || !reviewed || final {
			return fmt.Errorf("claim %s: pending approval needs reviewer notes and no final action", c.ClaimID)
		}
	case StatusApproved, StatusDenied:
		if !assigned || !reviewed || !final {
			return fmt.Errorf("claim %s: terminal claim is missing review or final action", c.ClaimID)
		}
	}
	if c.DenialReason != nil && c.Status != StatusDenied {
		return fmt.Errorf("claim %s: denial reason set on %s claim", c.ClaimID, c.Status)
	}
	if c.SettlementAmount != nil && c.Status != StatusApproved {
		return fmt.Errorf("claim %s: settlement amount set on %s claim", c.ClaimID, c.Status)
	}
	return nil
}

// Transition is one row of the status audit trail.
type Transition struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	ClaimID    uint64    `gorm:"not null;index:idx_history_claim" json:"-"`
	FromStatus *Status   `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus   Status    `gorm:"type:varchar(20);not null" json:"to_status"`
	Action     Action    `gorm:"type:varchar(32);not null" json:"action"`
	ActorID    string    `gorm:"size:32" json:"actor_id"`
	ActorRole  string    `gorm:"size:16" json:"actor_role"`
	Note       string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Transition) TableName() string { return "claim_status_history" }

// ListFilter narrows checker listings. Zero values mean "any".
type ListFilter struct {
	Status      Status
	ClaimTypeID uint64
	ClaimantID  string
	ReviewerID  string
}
