package claimmock

import (
	"context"
	"errors"
	"testing"

	domain "insurance-claims-backend/internal/domain/claim"
)

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}
	if _, err := m.GetByClaimID(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("GetByClaimID default: %v", err)
	}
	c := &domain.Claim{Version: 3}
	if err := m.Save(ctx, c); err != nil || c.Version != 4 {
		t.Fatalf("Save default: version=%d err=%v", c.Version, err)
	}
}

func TestHistoryRepo_RecordsAppends(t *testing.T) {
	ctx := context.Background()
	h := &HistoryRepo{}
	_ = h.Append(ctx, &domain.Transition{ClaimID: 1, Action: domain.ActionSubmit})
	_ = h.Append(ctx, &domain.Transition{ClaimID: 2, Action: domain.ActionSubmit})
	_ = h.Append(ctx, &domain.Transition{ClaimID: 1, Action: domain.ActionAssign})

	got, _ := h.ListByClaim(ctx, 1)
	if len(got) != 2 || got[1].Action != domain.ActionAssign {
		t.Fatalf("ListByClaim = %+v", got)
	}
}
