package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"insurance-claims-backend/internal/domain/claim"
	"insurance-claims-backend/internal/domain/claimtype"
	"insurance-claims-backend/internal/domain/uow"
	domain "insurance-claims-backend/internal/domain/user"
	"insurance-claims-backend/internal/infrastructure/logger"
	"insurance-claims-backend/pkg/id"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(u *domain.User) (string, time.Time, error)
}

type Usecase struct {
	users  domain.Repository
	types  claimtype.Repository
	uow    uow.UnitOfWork
	tokens TokenIssuer
	log    *logger.Logger
	cost   int

	dummyOnce sync.Once
	dummy     []byte
}

func NewUsecase(users domain.Repository, types claimtype.Repository, tx uow.UnitOfWork, tokens TokenIssuer, log *logger.Logger) *Usecase {
	if log == nil {
		log = logger.NewNop()
	}
	return &Usecase{users: users, types: types, uow: tx, tokens: tokens, log: log, cost: bcrypt.DefaultCost}
}

// dummyHash is compared against for unknown usernames. It uses the same cost
// as stored hashes so both paths take the same time.
func (u *Usecase) dummyHash() []byte {
	u.dummyOnce.Do(func() {
		u.dummy, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), u.cost)
	})
	return u.dummy
}

func (u *Usecase) Login(ctx context.Context, in LoginInput) (*LoginDTO, error) {
	usr, err := u.users.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(u.dummyHash(), []byte(in.Password))
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(in.Password)) != nil || !usr.Active {
		u.log.Warn("login rejected", "username", usr.Username, "active", usr.Active)
		return nil, domain.ErrInvalidCredentials
	}
	tok, exp, err := u.tokens.Issue(usr)
	if err != nil {
		return nil, err
	}
	return &LoginDTO{Token: tok, ExpiresAt: exp, User: usr}, nil
}

// ResolveActor reloads the caller named by a token. Unknown and inactive
// users are refused, and the stored role wins over the one in the token.
func (u *Usecase) ResolveActor(ctx context.Context, userID string) (domain.Actor, error) {
	usr, err := u.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Actor{}, fmt.Errorf("%w: unknown user", domain.ErrInvalidCredentials)
		}
		return domain.Actor{}, err
	}
	if !usr.Active {
		return domain.Actor{}, fmt.Errorf("%w: account is inactive", domain.ErrInvalidCredentials)
	}
	return usr.Actor(), nil
}

// Me returns the caller's own record.
func (u *Usecase) Me(ctx context.Context, actor domain.Actor) (*UserDTO, error) {
	usr, err := u.get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return u.withTypes(ctx, usr)
}

// ListUsers lists users by role. Reviewers are filtered to active ones since
// the list feeds the assignment picker.
func (u *Usecase) ListUsers(ctx context.Context, role string) ([]domain.User, error) {
	var r domain.Role
	if role != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", claim.ErrValidation, err)
		}
		r = parsed
	}
	return u.users.List(ctx, r, r == domain.RoleReviewer)
}

func (u *Usecase) ListActiveReviewers(ctx context.Context) ([]domain.User, error) {
	return u.users.List(ctx, domain.RoleReviewer, true)
}

func (u *Usecase) CreateUser(ctx context.Context, in CreateUserInput) (*UserDTO, error) {
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", claim.ErrValidation, err)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", claim.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	usr := &domain.User{
		UserID:       id.NewID32(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByUsername(ctx, usr.Username); err == nil {
			return fmt.Errorf("%w: %s", domain.ErrUsernameTaken, usr.Username)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := r.Users.Create(ctx, usr); err != nil {
			return err
		}
		if role != domain.RoleClaimant {
			return nil
		}
		return u.entitle(ctx, r.ClaimTypes, usr.UserID, in.ClaimTypeIDs)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("user created", "user_id", usr.UserID, "role", string(role))
	return u.withTypes(ctx, usr)
}

// entitle grants the listed types, or every active type when none is given.
func (u *Usecase) entitle(ctx context.Context, types claimtype.Repository, userID string, ids []uint64) error {
	if len(ids) == 0 {
		active, err := types.ListActive(ctx)
		if err != nil {
			return err
		}
		for _, t := range active {
			ids = append(ids, t.ID)
		}
	}
	for _, tid := range ids {
		if _, err := types.GetByID(ctx, tid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown claim type %d", claim.ErrValidation, tid)
			}
			return err
		}
	}
	return types.SetEntitlements(ctx, userID, ids)
}

func (u *Usecase) UpdateUser(ctx context.Context, actor domain.Actor, userID string, in UpdateUserInput) (*UserDTO, error) {
	var out *domain.User
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		usr, err := r.Users.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if in.Email != nil {
			usr.Email = strings.TrimSpace(*in.Email)
		}
		if in.Role != nil {
			role, err := domain.ParseRole(*in.Role)
			if err != nil {
				return fmt.Errorf("%w: %v", claim.ErrValidation, err)
			}
			usr.Role = role
		}
		if in.Active != nil {
			usr.Active = *in.Active
		}
		if usr.UserID == actor.ID && (usr.Role != domain.RoleChecker || !usr.Active) {
			return fmt.Errorf("%w: checkers cannot demote or deactivate themselves", claim.ErrForbidden)
		}
		if err := r.Users.Save(ctx, usr); err != nil {
			return err
		}
		if usr.Role == domain.RoleClaimant && in.ClaimTypeIDs != nil {
			if err := u.entitle(ctx, r.ClaimTypes, usr.UserID, in.ClaimTypeIDs); err != nil {
				return err
			}
		}
		out = usr
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return u.withTypes(ctx, out)
}

// DeactivateUser is a soft delete; claims keep their user references.
func (u *Usecase) DeactivateUser(ctx context.Context, actor domain.Actor, userID string) error {
	inactive := false
	_, err := u.UpdateUser(ctx, actor, userID, UpdateUserInput{Active: &inactive})
	return err
}

func (u *Usecase) AllowedClaimTypes(ctx context.Context, userID string) ([]claimtype.ClaimType, error) {
	return u.types.AllowedForUser(ctx, userID)
}

func (u *Usecase) ListClaimTypes(ctx context.Context) ([]claimtype.ClaimType, error) {
	return u.types.ListActive(ctx)
}

// HashPassword is used by the seed command.
func (u *Usecase) HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), u.cost)
	return string(b), err
}

func (u *Usecase) get(ctx context.Context, userID string) (*domain.User, error) {
	usr, err := u.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return usr, nil
}

func (u *Usecase) withTypes(ctx context.Context, usr *domain.User) (*UserDTO, error) {
	dto := &UserDTO{User: usr}
	if usr.Role == domain.RoleClaimant {
		types, err := u.types.AllowedForUser(ctx, usr.UserID)
		if err != nil {
			return nil, err
		}
		dto.ClaimTypes = types
	}
	return dto, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return err
}
