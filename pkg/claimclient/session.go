package claimclient

import (
	"context"
	"fmt"
	"sync"
)

// Session is one signed-in user's view of the claims it can see. The view
// is only ever replaced by server reads: after a successful mutation the list
// and the current claim are fetched again, and a failed mutation leaves both
// as they were.
type Session struct {
	api    *Client
	role   Role
	userID string
	filter Filter

	mu      sync.RWMutex
	claims  []Claim
	current *Claim
}

func NewSession(api *Client, role Role, userID string) *Session {
	return &Session{api: api, role: role, userID: userID}
}

func (s *Session) Claims() []Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Claim, len(s.claims))
	copy(out, s.claims)
	return out
}

func (s *Session) Current() *Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// SetFilter changes the checker list filter and reloads the list.
func (s *Session) SetFilter(ctx context.Context, f Filter) error {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
	return s.Refresh(ctx)
}

func (s *Session) Refresh(ctx context.Context) error {
	s.mu.RLock()
	f := s.filter
	s.mu.RUnlock()
	list, err := s.api.ListClaims(ctx, s.role, s.userID, f)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.claims = list
	s.mu.Unlock()
	return nil
}

// Open loads a claim and makes it current.
func (s *Session) Open(ctx context.Context, claimID string) (*Claim, error) {
	c, err := s.api.GetClaim(ctx, claimID, s.role, s.userID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
	return c, nil
}

// The mutations below return the claim as the server answered it. When the
// reload that follows fails, that claim comes back together with ErrStale.

func (s *Session) Submit(ctx context.Context, req SubmitRequest) (*Claim, error) {
	return s.mutate(ctx, func() (*Claim, error) { return s.api.SubmitClaim(ctx, req) })
}

func (s *Session) Assign(ctx context.Context, claimID, reviewerID string) (*Claim, error) {
	return s.mutate(ctx, func() (*Claim, error) { return s.api.Assign(ctx, claimID, reviewerID) })
}

func (s *Session) SubmitForApproval(ctx context.Context, claimID string, req ReviewRequest) (*Claim, error) {
	return s.mutate(ctx, func() (*Claim, error) { return s.api.SubmitForApproval(ctx, claimID, s.userID, req) })
}

func (s *Session) Approve(ctx context.Context, claimID string, amount *float64) (*Claim, error) {
	return s.mutate(ctx, func() (*Claim, error) { return s.api.Approve(ctx, claimID, s.userID, amount) })
}

func (s *Session) Deny(ctx context.Context, claimID, reason string) (*Claim, error) {
	return s.mutate(ctx, func() (*Claim, error) { return s.api.Deny(ctx, claimID, s.userID, reason) })
}

// CanPerform reports whether the current claim offers the action to this user.
func (s *Session) CanPerform(a Action) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return false
	}
	for _, allowed := range s.current.AllowedActions {
		if allowed == a {
			return true
		}
	}
	return false
}

func (s *Session) mutate(ctx context.Context, call func() (*Claim, error)) (*Claim, error) {
	applied, err := call()
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(ctx); err != nil {
		return applied, fmt.Errorf("%w: %w", ErrStale, err)
	}
	if _, err := s.Open(ctx, applied.ID); err != nil {
		return applied, fmt.Errorf("%w: %w", ErrStale, err)
	}
	return applied, nil
}
