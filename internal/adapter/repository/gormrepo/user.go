package gormrepo

import (
	"context"

	userDomain "insurance-claims-backend/internal/domain/user"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *userDomain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// Save writes every column so that Active=false is persisted.
func (r *UserRepository) Save(ctx context.Context, u *userDomain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*userDomain.User, error) {
	var out userDomain.User
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	return &out, res.Error
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*userDomain.User, error) {
	var out userDomain.User
	res := r.db.WithContext(ctx).Where("username = ?", username).First(&out)
	return &out, res.Error
}

func (r *UserRepository) List(ctx context.Context, role userDomain.Role, activeOnly bool) ([]userDomain.User, error) {
	var out []userDomain.User
	q := r.db.WithContext(ctx).Model(&userDomain.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	res := q.Order("username ASC").Find(&out)
	return out, res.Error
}
