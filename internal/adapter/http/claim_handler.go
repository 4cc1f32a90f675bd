package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"insurance-claims-backend/internal/domain/claim"
	"insurance-claims-backend/internal/domain/user"
	"insurance-claims-backend/internal/infrastructure/logger"
	"insurance-claims-backend/internal/usecase/assignment"
	claimuc "insurance-claims-backend/internal/usecase/claim"

	"github.com/labstack/echo/v4"
)

type ClaimHandler struct {
	uc     *claimuc.Usecase
	assign *assignment.Usecase
	log    *logger.Logger
}

func NewClaimHandler(uc *claimuc.Usecase, assign *assignment.Usecase, log *logger.Logger) *ClaimHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ClaimHandler{uc: uc, assign: assign, log: log}
}

// ----- claimant -----

// Submit accepts multipart fields claimType, incident_date (YYYY-MM-DD),
// description and documents[].
func (h *ClaimHandler) Submit(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	form, err := multipartForm(c)
	if err != nil {
		return badRequest(c, "invalid multipart body")
	}
	if uid := formValue(form, "user_id"); uid != "" && uid != a.ID {
		return respondErr(c, h.log, fmt.Errorf("%w: user_id does not match the authenticated user", claim.ErrForbidden))
	}

	var details []FieldError
	typeID, err := strconv.ParseUint(formValue(form, "claimType", "claim_type_id"), 10, 64)
	if err != nil || typeID == 0 {
		details = append(details, FieldError{Field: "claimType", Message: "is required and must be a claim type id"})
	}
	incident, err := time.Parse("2006-01-02", formValue(form, "incident_date"))
	if err != nil {
		details = append(details, FieldError{Field: "incident_date", Message: "is required in YYYY-MM-DD format"})
	}
	if len(details) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Code: "VALIDATION_ERROR", Details: details})
	}

	dto, err := h.uc.Submit(c.Request().Context(), a, claimuc.SubmitInput{
		ClaimTypeID:  typeID,
		IncidentDate: incident,
		Description:  formValue(form, "description"),
		Documents:    formFiles(form, "documents[]", "documents"),
	})
	if err != nil {
		return respondErr(c, h.log, err)
	}
	setVersionHeader(c, dto.Version)
	return ok(c, http.StatusCreated, dto)
}

func (h *ClaimHandler) ListForClaimant(c echo.Context) error {
	a, err := self(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	out, err := h.uc.ListForClaimant(c.Request().Context(), a)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return ok(c, http.StatusOK, out)
}

// GetOwn serves the claimant and reviewer detail routes; the use case
// decides visibility from the caller's role.
func (h *ClaimHandler) GetOwn(c echo.Context) error {
	a, err := self(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return h.get(c, a, c.Param("claimId"))
}

// ----- reviewer -----

func (h *ClaimHandler) ListForReviewer(c echo.Context) error {
	a, err := self(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	out, err := h.uc.ListForReviewer(c.Request().Context(), a)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return ok(c, http.StatusOK, out)
}

// SubmitForApproval accepts multipart fields reviewer_notes,
// settlement_amount (optional) and reviewer_documents[].
func (h *ClaimHandler) SubmitForApproval(c echo.Context) error {
	a, err := self(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	ver, err := expectedVersion(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	form, err := multipartForm(c)
	if err != nil {
		return badRequest(c, "invalid multipart body")
	}
	amount, err := claim.ParseAmount(formValue(form, "settlement_amount", "proposed_settlement_amount"))
	if err != nil {
		return respondErr(c, h.log, err)
	}
	dto, err := h.uc.SubmitForApproval(c.Request().Context(), a, claimuc.ReviewInput{
		ClaimID:          c.Param("claimId"),
		ReviewerNotes:    formValue(form, "reviewer_notes"),
		SettlementAmount: amount,
		Documents:        formFiles(form, "reviewer_documents[]", "reviewer_documents"),
		ExpectedVersion:  ver,
	})
	if err != nil {
		return respondErr(c, h.log, err)
	}
	setVersionHeader(c, dto.Version)
	return ok(c, http.StatusOK, dto)
}

// ----- checker -----

type listQuery struct {
	Status      string `query:"status" validate:"omitempty,claimstatus"`
	ClaimTypeID uint64 `query:"claim_type_id"`
}

func (h *ClaimHandler) ListForChecker(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.ListForChecker(c.Request().Context(), a, claim.ListFilter{
		Status:      claim.Status(q.Status),
		ClaimTypeID: q.ClaimTypeID,
	})
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return ok(c, http.StatusOK, out)
}

func (h *ClaimHandler) Get(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return h.get(c, a, c.Param("claimId"))
}

func (h *ClaimHandler) get(c echo.Context, a user.Actor, claimID string) error {
	dto, err := h.uc.Get(c.Request().Context(), a, claimID)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	setVersionHeader(c, dto.Version)
	return ok(c, http.StatusOK, dto)
}

func (h *ClaimHandler) History(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	out, err := h.uc.History(c.Request().Context(), a, c.Param("claimId"))
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return ok(c, http.StatusOK, out)
}

func (h *ClaimHandler) Assign(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	var in assignment.AssignInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&in); err != nil {
		return validationFailed(c, err)
	}
	if in.ExpectedVersion, err = expectedVersion(c); err != nil {
		return respondErr(c, h.log, err)
	}
	in.ClaimID = c.Param("claimId")
	if _, err := h.assign.Assign(c.Request().Context(), a, in); err != nil {
		return respondErr(c, h.log, err)
	}
	return h.get(c, a, in.ClaimID)
}

// Decision bodies keep their fields raw so a wrongly typed value is reported
// as a validation error on that field rather than as an unreadable body.
type approveReq struct {
	SettlementAmount json.RawMessage `json:"settlement_amount"`
}

type approveInput struct {
	SettlementAmount *float64 `json:"settlement_amount" validate:"omitempty,gte=0,dec2"`
}

func (h *ClaimHandler) Approve(c echo.Context) error {
	a, err := self(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	var req approveReq
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid body")
		}
	}
	amount, err := amountField(req.SettlementAmount)
	if err != nil {
		return fieldInvalid(c, "settlement_amount", err)
	}
	in := approveInput{SettlementAmount: amount}
	if err := c.Validate(&in); err != nil {
		return validationFailed(c, err)
	}
	ver, err := expectedVersion(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	dto, err := h.uc.Approve(c.Request().Context(), a, claimuc.ApproveInput{
		ClaimID:          c.Param("claimId"),
		SettlementAmount: in.SettlementAmount,
		ExpectedVersion:  ver,
	})
	if err != nil {
		return respondErr(c, h.log, err)
	}
	setVersionHeader(c, dto.Version)
	return ok(c, http.StatusOK, dto)
}

type denyReq struct {
	DenialReason json.RawMessage `json:"denial_reason"`
}

type denyInput struct {
	DenialReason string `json:"denial_reason" validate:"required,max=2000"`
}

func (h *ClaimHandler) Deny(c echo.Context) error {
	a, err := self(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	var req denyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	reason, err := stringField(req.DenialReason)
	if err != nil {
		return fieldInvalid(c, "denial_reason", err)
	}
	in := denyInput{DenialReason: reason}
	if err := c.Validate(&in); err != nil {
		return validationFailed(c, err)
	}
	ver, err := expectedVersion(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	dto, err := h.uc.Deny(c.Request().Context(), a, claimuc.DenyInput{
		ClaimID:         c.Param("claimId"),
		DenialReason:    in.DenialReason,
		ExpectedVersion: ver,
	})
	if err != nil {
		return respondErr(c, h.log, err)
	}
	setVersionHeader(c, dto.Version)
	return ok(c, http.StatusOK, dto)
}

// ----- dashboards -----

func (h *ClaimHandler) Stats(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	out, err := h.uc.Stats(c.Request().Context(), a)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return ok(c, http.StatusOK, out)
}
