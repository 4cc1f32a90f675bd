package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"insurance-claims-backend/internal/domain/claim"
	"insurance-claims-backend/internal/domain/claimtype"
	"insurance-claims-backend/internal/domain/uow"
	domain "insurance-claims-backend/internal/domain/user"
	"insurance-claims-backend/internal/testutil/claimtypemock"
	"insurance-claims-backend/internal/testutil/uowmock"
	"insurance-claims-backend/internal/testutil/usermock"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeTokens struct{ err error }

func (f fakeTokens) Issue(u *domain.User) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return "tok-" + u.UserID, time.Unix(100, 0), nil
}

type fixture struct {
	users    map[string]*domain.User
	entitled map[string][]uint64
	types    map[uint64]claimtype.ClaimType
	userRepo *usermock.Repo
	typeRepo *claimtypemock.Repo
	uc       *Usecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:    map[string]*domain.User{},
		entitled: map[string][]uint64{},
		types: map[uint64]claimtype.ClaimType{
			1: {ID: 1, Name: "Auto", Active: true},
			2: {ID: 2, Name: "Home", Active: true},
		},
	}
	byName := func(name string) *domain.User {
		for _, u := range f.users {
			if u.Username == name {
				return u
			}
		}
		return nil
	}
	f.userRepo = &usermock.Repo{
		CreateFn: func(_ context.Context, u *domain.User) error { f.users[u.UserID] = u; return nil },
		SaveFn:   func(_ context.Context, u *domain.User) error { f.users[u.UserID] = u; return nil },
		GetByUserIDFn: func(_ context.Context, id string) (*domain.User, error) {
			if u, ok := f.users[id]; ok {
				return u, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		GetByUsernameFn: func(_ context.Context, name string) (*domain.User, error) {
			if u := byName(name); u != nil {
				return u, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		ListFn: func(_ context.Context, role domain.Role, activeOnly bool) ([]domain.User, error) {
			var out []domain.User
			for _, u := range f.users {
				if (role == "" || u.Role == role) && (!activeOnly || u.Active) {
					out = append(out, *u)
				}
			}
			return out, nil
		},
	}
	f.typeRepo = &claimtypemock.Repo{
		GetByIDFn: func(_ context.Context, id uint64) (*claimtype.ClaimType, error) {
			if t, ok := f.types[id]; ok {
				return &t, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		ListActiveFn: func(context.Context) ([]claimtype.ClaimType, error) {
			return []claimtype.ClaimType{f.types[1], f.types[2]}, nil
		},
		AllowedForUserFn: func(_ context.Context, userID string) ([]claimtype.ClaimType, error) {
			var out []claimtype.ClaimType
			for _, id := range f.entitled[userID] {
				out = append(out, f.types[id])
			}
			return out, nil
		},
		SetEntitlementsFn: func(_ context.Context, userID string, ids []uint64) error {
			f.entitled[userID] = ids
			return nil
		},
	}
	tx := uowmock.Passthrough(uow.Repos{Users: f.userRepo, ClaimTypes: f.typeRepo})
	f.uc = NewUsecase(f.userRepo, f.typeRepo, tx, fakeTokens{}, nil)
	f.uc.cost = bcrypt.MinCost
	return f
}

func (f *fixture) seed(t *testing.T, id, name, pw string, role domain.Role, active bool) {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	f.users[id] = &domain.User{UserID: id, Username: name, PasswordHash: string(h), Role: role, Active: active}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "U1", "alice", "correct-horse", domain.RoleClaimant, true)
	f.seed(t, "U9", "gone", "correct-horse", domain.RoleReviewer, false)

	out, err := f.uc.Login(context.Background(), LoginInput{Username: " alice ", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if out.Token != "tok-U1" || out.User.UserID != "U1" {
		t.Fatalf("unexpected login result %+v", out)
	}

	for name, in := range map[string]LoginInput{
		"wrong password": {Username: "alice", Password: "nope-nope"},
		"unknown user":   {Username: "mallory", Password: "correct-horse"},
		"inactive user":  {Username: "gone", Password: "correct-horse"},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := f.uc.Login(context.Background(), in); !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("want ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestLoginIssuerFailure(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "U1", "alice", "correct-horse", domain.RoleClaimant, true)
	boom := errors.New("sign failed")
	f.uc.tokens = fakeTokens{err: boom}
	if _, err := f.uc.Login(context.Background(), LoginInput{Username: "alice", Password: "correct-horse"}); !errors.Is(err, boom) {
		t.Fatalf("want issuer error, got %v", err)
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	dto, err := f.uc.CreateUser(ctx, CreateUserInput{Username: "carol", Email: "c@example.com", Password: "longenough", Role: "claimant"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(dto.UserID) != 32 || !dto.Active {
		t.Fatalf("unexpected user %+v", dto.User)
	}
	if bcrypt.CompareHashAndPassword([]byte(dto.PasswordHash), []byte("longenough")) != nil {
		t.Fatal("password hash does not verify")
	}
	if got := f.entitled[dto.UserID]; len(got) != 2 {
		t.Fatalf("claimant without explicit types should get every active type, got %v", got)
	}
	if len(dto.ClaimTypes) != 2 {
		t.Fatalf("dto claim types = %d", len(dto.ClaimTypes))
	}

	rev, err := f.uc.CreateUser(ctx, CreateUserInput{Username: "rita", Email: "r@example.com", Password: "longenough", Role: "reviewer"})
	if err != nil {
		t.Fatalf("create reviewer: %v", err)
	}
	if _, ok := f.entitled[rev.UserID]; ok {
		t.Fatal("reviewers get no entitlements")
	}

	tests := []struct {
		name string
		in   CreateUserInput
		want error
	}{
		{"duplicate username", CreateUserInput{Username: "carol", Password: "longenough", Role: "claimant"}, domain.ErrUsernameTaken},
		{"bad role", CreateUserInput{Username: "x", Password: "longenough", Role: "admin"}, claim.ErrValidation},
		{"short password", CreateUserInput{Username: "y", Password: "short", Role: "checker"}, claim.ErrValidation},
		{"unknown claim type", CreateUserInput{Username: "z", Password: "longenough", Role: "claimant", ClaimTypeIDs: []uint64{7}}, claim.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.uc.CreateUser(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUpdateAndDeactivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "U1", "alice", "pw-pw-pw-pw", domain.RoleClaimant, true)
	f.seed(t, "U3", "boss", "pw-pw-pw-pw", domain.RoleChecker, true)
	boss := domain.Actor{ID: "U3", Role: domain.RoleChecker}

	email := "new@example.com"
	dto, err := f.uc.UpdateUser(ctx, boss, "U1", UpdateUserInput{Email: &email, ClaimTypeIDs: []uint64{2}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Email != email || len(f.entitled["U1"]) != 1 || f.entitled["U1"][0] != 2 {
		t.Fatalf("update not applied: %+v %v", dto.User, f.entitled["U1"])
	}

	if err := f.uc.DeactivateUser(ctx, boss, "U1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if f.users["U1"].Active {
		t.Fatal("user still active")
	}
	if err := f.uc.DeactivateUser(ctx, boss, "U3"); !errors.Is(err, claim.ErrForbidden) {
		t.Fatalf("self deactivation: want ErrForbidden, got %v", err)
	}
	if err := f.uc.DeactivateUser(ctx, boss, "U404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown user: want ErrNotFound, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "U2", "rev1", "pw", domain.RoleReviewer, true)
	f.seed(t, "U5", "rev2", "pw", domain.RoleReviewer, false)
	f.seed(t, "U1", "alice", "pw", domain.RoleClaimant, true)

	revs, err := f.uc.ListActiveReviewers(ctx)
	if err != nil || len(revs) != 1 || revs[0].UserID != "U2" {
		t.Fatalf("active reviewers = %+v, %v", revs, err)
	}
	all, err := f.uc.ListUsers(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("all users = %d, %v", len(all), err)
	}
	if _, err := f.uc.ListUsers(ctx, "admin"); !errors.Is(err, claim.ErrValidation) {
		t.Fatalf("bad role filter: want ErrValidation, got %v", err)
	}
}

func TestResolveActor(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "U3", "carol", "password1", domain.RoleChecker, true)
	f.seed(t, "U4", "dave", "password1", domain.RoleChecker, false)
	f.seed(t, "U5", "erin", "password1", domain.RoleClaimant, true)

	tests := []struct {
		name     string
		userID   string
		wantRole domain.Role
		wantErr  error
	}{
		{"active checker", "U3", domain.RoleChecker, nil},
		{"inactive user", "U4", "", domain.ErrInvalidCredentials},
		{"unknown user", "U404", "", domain.ErrInvalidCredentials},
		{"stored role is used", "U5", domain.RoleClaimant, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := f.uc.ResolveActor(context.Background(), tt.userID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil || a.ID != tt.userID || a.Role != tt.wantRole {
				t.Fatalf("actor = %+v, err = %v", a, err)
			}
		})
	}
}

func TestResolveActorStoreFailure(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("db down")
	f.userRepo.GetByUserIDFn = func(context.Context, string) (*domain.User, error) { return nil, boom }
	if _, err := f.uc.ResolveActor(context.Background(), "U1"); !errors.Is(err, boom) || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("want store error, got %v", err)
	}
}

func TestDummyHashUsesConfiguredCost(t *testing.T) {
	uc := NewUsecase(nil, nil, nil, fakeTokens{}, nil)
	cost, err := bcrypt.Cost(uc.dummyHash())
	if err != nil {
		t.Fatal(err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("dummy hash cost = %d, want %d", cost, bcrypt.DefaultCost)
	}

	f := newFixture(t)
	if cost, _ := bcrypt.Cost(f.uc.dummyHash()); cost != bcrypt.MinCost {
		t.Fatalf("fixture dummy cost = %d, want %d", cost, bcrypt.MinCost)
	}
}
