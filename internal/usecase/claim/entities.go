package claim

import (
	"time"

	domain "insurance-claims-backend/internal/domain/claim"
	"insurance-claims-backend/internal/domain/document"
	docuc "insurance-claims-backend/internal/usecase/document"
)

type SubmitInput struct {
	ClaimTypeID  uint64
	IncidentDate time.Time
	Description  string
	Documents    []docuc.Upload
}

type ReviewInput struct {
	ClaimID          string
	ReviewerNotes    string
	SettlementAmount *float64
	Documents        []docuc.Upload
	ExpectedVersion  *uint
}

type ApproveInput struct {
	ClaimID          string
	SettlementAmount *float64
	ExpectedVersion  *uint
}

type DenyInput struct {
	ClaimID         string
	DenialReason    string
	ExpectedVersion *uint
}

// ClaimDTO is the full claim representation returned by every endpoint.
type ClaimDTO struct {
	*domain.Claim
	ClaimTypeName   string              `json:"claim_type_name,omitempty"`
	Documents       []document.Document `json:"documents"`
	ReviewDocuments []document.Document `json:"review_documents"`
	AllowedActions  []domain.Action     `json:"allowed_actions"`
}

type TypeCount struct {
	ClaimTypeID uint64 `json:"claim_type_id"`
	Name        string `json:"name"`
	Count       int64  `json:"count"`
}

type StatsDTO struct {
	Total    int64                   `json:"total"`
	ByStatus map[domain.Status]int64 `json:"by_status"`
	ByType   []TypeCount             `json:"by_type"`
}
