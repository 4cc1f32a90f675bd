// Package claimclient is a typed client for the claims REST API.
//
// Every call is a single blocking request. Nothing is retried and nothing is
// assumed about the result of a mutation beyond what the server returns.
package claimclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"insurance-claims-backend/internal/domain/document"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }
func WithToken(tok string) Option           { return func(c *Client) { c.token = tok } }

// New returns a client for the API rooted at baseURL, e.g. "https://host/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) SetToken(tok string) { c.token = tok }

// Login authenticates and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// ListClaims lists what actor sees in its role. Filters only apply to
// checkers; the other roles always get their own claims.
func (c *Client) ListClaims(ctx context.Context, role Role, actorID string, f Filter) ([]Claim, error) {
	var path string
	switch role {
	case RoleClaimant:
		path = "/claimant/claims/" + url.PathEscape(actorID)
	case RoleReviewer:
		path = "/reviewer/claims/" + url.PathEscape(actorID)
	case RoleChecker:
		q := url.Values{}
		if f.Status != "" {
			q.Set("status", string(f.Status))
		}
		if f.ClaimTypeID != 0 {
			q.Set("claim_type_id", strconv.FormatUint(f.ClaimTypeID, 10))
		}
		path = "/checker/claims"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	var out []Claim
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetClaim(ctx context.Context, claimID string, role Role, actorID string) (*Claim, error) {
	id := url.PathEscape(claimID)
	var path string
	switch role {
	case RoleClaimant:
		path = "/claimant/claims/" + id + "/" + url.PathEscape(actorID)
	case RoleReviewer:
		path = "/reviewer/claims/" + id + "/" + url.PathEscape(actorID)
	case RoleChecker:
		path = "/checker/claims/" + id
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	var out Claim
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitClaim validates the files locally before sending anything.
func (c *Client) SubmitClaim(ctx context.Context, req SubmitRequest) (*Claim, error) {
	if err := validateFiles(document.OriginClaimant, req.Files); err != nil {
		return nil, err
	}
	fields := map[string]string{
		"claimType":     strconv.FormatUint(req.ClaimTypeID, 10),
		"incident_date": req.IncidentDate.Format("2006-01-02"),
		"description":   req.Description,
	}
	var out Claim
	if err := c.doMultipart(ctx, http.MethodPost, "/claimant/claims", fields, "documents[]", req.Files, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Assign(ctx context.Context, claimID, reviewerID string) (*Claim, error) {
	var out Claim
	body := map[string]string{"reviewer_id": reviewerID}
	if err := c.doJSON(ctx, http.MethodPatch, "/checker/claims/"+url.PathEscape(claimID)+"/assign", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitForApproval(ctx context.Context, claimID, reviewerID string, req ReviewRequest) (*Claim, error) {
	if err := validateFiles(document.OriginReviewer, req.Files); err != nil {
		return nil, err
	}
	fields := map[string]string{"reviewer_notes": req.Notes}
	if req.SettlementAmount != nil {
		fields["settlement_amount"] = strconv.FormatFloat(*req.SettlementAmount, 'f', 2, 64)
	}
	path := fmt.Sprintf("/reviewer/claims/%s/submit-for-approval/%s", url.PathEscape(claimID), url.PathEscape(reviewerID))
	var out Claim
	if err := c.doMultipart(ctx, http.MethodPatch, path, fields, "reviewer_documents[]", req.Files, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Approve(ctx context.Context, claimID, checkerID string, amount *float64) (*Claim, error) {
	body := map[string]any{}
	if amount != nil {
		body["settlement_amount"] = *amount
	}
	var out Claim
	path := fmt.Sprintf("/checker/claims/%s/approve/%s", url.PathEscape(claimID), url.PathEscape(checkerID))
	if err := c.doJSON(ctx, http.MethodPatch, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Deny(ctx context.Context, claimID, checkerID, reason string) (*Claim, error) {
	var out Claim
	path := fmt.Sprintf("/checker/claims/%s/deny/%s", url.PathEscape(claimID), url.PathEscape(checkerID))
	if err := c.doJSON(ctx, http.MethodPatch, path, map[string]string{"denial_reason": reason}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns the claim's transitions, oldest first.
func (c *Client) History(ctx context.Context, claimID string) ([]Transition, error) {
	var out []Transition
	if err := c.doJSON(ctx, http.MethodGet, "/checker/claims/"+url.PathEscape(claimID)+"/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListReviewers returns the active reviewers a checker can assign.
func (c *Client) ListReviewers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.doJSON(ctx, http.MethodGet, "/checker/users?role=reviewer", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Download returns the document content; the caller closes it.
func (c *Client) Download(ctx context.Context, storedFilename string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/documents/download/"+url.PathEscape(storedFilename), nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp.Body, nil
}

// validateFiles applies the server's batch rules locally.
func validateFiles(origin document.Origin, files []File) error {
	meta := make([]document.FileMeta, len(files))
	for i, f := range files {
		meta[i] = document.FileMeta{Filename: f.Name, Size: int64(len(f.Content))}
	}
	if err := document.ValidateBatch(origin, meta); err != nil {
		return fmt.Errorf("%w: %v", ErrFileValidation, err)
	}
	return nil
}

// ----- transport -----

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type errorBody struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	ct := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body, ct = bytes.NewReader(b), "application/json"
	}
	req, err := c.newRequest(ctx, method, path, body, ct)
	if err != nil {
		return err
	}
	return c.roundTrip(req, out)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, fields map[string]string, fileField string, files []File, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(fileField, f.Name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(f.Content); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	req, err := c.newRequest(ctx, method, path, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	return c.roundTrip(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNetwork, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return resp, nil
}

func (c *Client) roundTrip(req *http.Request, out any) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	if len(env.Data) == 0 {
		return errors.New("response has no data")
	}
	return json.Unmarshal(env.Data, out)
}

func decodeError(resp *http.Response) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &eb) != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(raw))
		if eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
	}
	return &APIError{Status: resp.StatusCode, Code: eb.Code, Message: eb.Error, Details: eb.Details}
}
