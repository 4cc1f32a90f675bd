package gormrepo

import (
	"context"
	"errors"
	"testing"

	ctDomain "insurance-claims-backend/internal/domain/claimtype"
	docDomain "insurance-claims-backend/internal/domain/document"
	userDomain "insurance-claims-backend/internal/domain/user"

	"gorm.io/gorm"
)

func TestDocumentRepository(t *testing.T) {
	db := openTestDB(t)
	claims := NewClaimRepository(db)
	docs := NewDocumentRepository(db)
	ctx := context.Background()

	c := makeClaim("U1", 1)
	_ = claims.Create(ctx, c)

	if err := docs.CreateBatch(ctx, nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	batch := []docDomain.Document{
		{ClaimID: c.ID, OriginalFilename: "a.pdf", StoredFilename: "01A.pdf", MimeType: "application/pdf", FileSizeBytes: 10, UploadedByUserID: "U1"},
		{ClaimID: c.ID, OriginalFilename: "b.png", StoredFilename: "01B.png", MimeType: "image/png", FileSizeBytes: 20, IsReviewDocument: true, UploadedByUserID: "U2"},
	}
	if err := docs.CreateBatch(ctx, batch); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	got, err := docs.ListByClaim(ctx, c.ID)
	if err != nil || len(got) != 2 {
		t.Fatalf("ListByClaim = %d, %v", len(got), err)
	}
	if got[0].StoredFilename != "01A.pdf" || !got[1].IsReviewDocument {
		t.Fatalf("docs = %+v", got)
	}

	d, err := docs.GetByStoredFilename(ctx, "01B.png")
	if err != nil || d.OriginalFilename != "b.png" {
		t.Fatalf("GetByStoredFilename = %+v, %v", d, err)
	}
	if _, err := docs.GetByStoredFilename(ctx, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := makeUser("alice", userDomain.RoleReviewer, true)
	bob := makeUser("bob", userDomain.RoleReviewer, false)
	carol := makeUser("carol", userDomain.RoleChecker, true)
	for _, u := range []*userDomain.User{alice, bob, carol} {
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create %s: %v", u.Username, err)
		}
	}

	got, err := repo.GetByUsername(ctx, "bob")
	if err != nil || got.Active {
		t.Fatalf("bob = %+v, %v", got, err)
	}

	tests := []struct {
		name       string
		role       userDomain.Role
		activeOnly bool
		want       []string
	}{
		{"all", "", false, []string{"alice", "bob", "carol"}},
		{"reviewers", userDomain.RoleReviewer, false, []string{"alice", "bob"}},
		{"active reviewers", userDomain.RoleReviewer, true, []string{"alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			us, err := repo.List(ctx, tt.role, tt.activeOnly)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(us) != len(tt.want) {
				t.Fatalf("got %d users, want %d", len(us), len(tt.want))
			}
			for i, u := range us {
				if u.Username != tt.want[i] {
					t.Fatalf("users[%d] = %s, want %s", i, u.Username, tt.want[i])
				}
			}
		})
	}

	alice.Active = false
	if err := repo.Save(ctx, alice); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ = repo.GetByUserID(ctx, alice.UserID)
	if got.Active {
		t.Fatal("deactivation not persisted")
	}
}

func TestClaimTypeRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewClaimTypeRepository(db)
	ctx := context.Background()

	if err := SeedClaimTypes(ctx, db); err != nil {
		t.Fatalf("SeedClaimTypes: %v", err)
	}
	if err := SeedClaimTypes(ctx, db); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	active, err := repo.ListActive(ctx)
	if err != nil || len(active) != len(DefaultClaimTypes) {
		t.Fatalf("ListActive = %d, %v", len(active), err)
	}

	retired := &ctDomain.ClaimType{Name: "Pet", Active: true}
	_ = repo.Create(ctx, retired)
	retired.Active = false
	if err := db.Save(retired).Error; err != nil {
		t.Fatalf("retire: %v", err)
	}

	if err := repo.SetEntitlements(ctx, "U1", []uint64{active[0].ID, retired.ID}); err != nil {
		t.Fatalf("SetEntitlements: %v", err)
	}
	allowed, err := repo.AllowedForUser(ctx, "U1")
	if err != nil {
		t.Fatalf("AllowedForUser: %v", err)
	}
	if len(allowed) != 1 || allowed[0].ID != active[0].ID {
		t.Fatalf("allowed = %+v", allowed)
	}

	if err := repo.SetEntitlements(ctx, "U1", nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	allowed, _ = repo.AllowedForUser(ctx, "U1")
	if len(allowed) != 0 {
		t.Fatalf("entitlements not cleared: %+v", allowed)
	}

	got, err := repo.GetByID(ctx, retired.ID)
	if err != nil || got.Name != "Pet" {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}
}
