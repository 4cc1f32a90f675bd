package claimclient

import "time"

type Status string

const (
	StatusPending         Status = "Pending"
	StatusUnderReview     Status = "Under Review"
	StatusPendingApproval Status = "Pending Approval"
	StatusApproved        Status = "Approved"
	StatusDenied          Status = "Denied"
)

type Action string

const (
	ActionSubmit            Action = "submit"
	ActionAssign            Action = "assign"
	ActionSubmitForApproval Action = "submit_for_approval"
	ActionApprove           Action = "approve"
	ActionDeny              Action = "deny"
)

type Role string

const (
	RoleClaimant Role = "claimant"
	RoleReviewer Role = "reviewer"
	RoleChecker  Role = "checker"
)

type Document struct {
	OriginalFilename string    `json:"original_filename"`
	StoredFilename   string    `json:"stored_filename"`
	MimeType         string    `json:"mime_type"`
	FileSizeBytes    int64     `json:"file_size_bytes"`
	IsReviewDocument bool      `json:"is_review_document"`
	UploadedByUserID string    `json:"uploaded_by_user_id"`
	CreatedAt        time.Time `json:"created_at"`
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Transition struct {
	FromStatus *Status   `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Action     Action    `json:"action"`
	ActorID    string    `json:"actor_id"`
	ActorRole  Role      `json:"actor_role"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Claim struct {
	ID                       string     `json:"id"`
	ClaimantID               string     `json:"claimant_id"`
	ClaimTypeID              uint64     `json:"claim_type_id"`
	ClaimTypeName            string     `json:"claim_type_name"`
	Status                   Status     `json:"status"`
	Description              string     `json:"description"`
	IncidentDate             time.Time  `json:"incident_date"`
	AssignedReviewerID       *string    `json:"assigned_reviewer_id"`
	ReviewerNotes            *string    `json:"reviewer_notes"`
	ProposedSettlementAmount *float64   `json:"proposed_settlement_amount"`
	FinalActionByUserID      *string    `json:"final_action_by_user_id"`
	FinalActionAt            *time.Time `json:"final_action_at"`
	DenialReason             *string    `json:"denial_reason"`
	SettlementAmount         *float64   `json:"settlement_amount"`
	SubmittedForApprovalAt   *time.Time `json:"submitted_for_approval_at"`
	Version                  uint       `json:"version"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
	Documents                []Document `json:"documents"`
	ReviewDocuments          []Document `json:"review_documents"`
	AllowedActions           []Action   `json:"allowed_actions"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// File is an upload held in memory; the API caps files at 5 MiB.
type File struct {
	Name    string
	Content []byte
}

type Filter struct {
	Status      Status
	ClaimTypeID uint64
}

type SubmitRequest struct {
	ClaimTypeID  uint64
	IncidentDate time.Time
	Description  string
	Files        []File
}

type ReviewRequest struct {
	Notes            string
	SettlementAmount *float64
	Files            []File
}
