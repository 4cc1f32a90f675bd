package gormrepo

import (
	"context"

	claimDomain "insurance-claims-backend/internal/domain/claim"
	ctDomain "insurance-claims-backend/internal/domain/claimtype"
	docDomain "insurance-claims-backend/internal/domain/document"
	userDomain "insurance-claims-backend/internal/domain/user"

	"gorm.io/gorm"
)

// Models lists every table the service owns, in migration order.
func Models() []any {
	return []any{
		&userDomain.User{},
		&ctDomain.ClaimType{},
		&ctDomain.Entitlement{},
		&claimDomain.Claim{},
		&claimDomain.Transition{},
		&docDomain.Document{},
	}
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(Models()...)
}

// DefaultClaimTypes are inserted by SeedClaimTypes when the table is empty.
var DefaultClaimTypes = []ctDomain.ClaimType{
	{Name: "Auto", Description: "Vehicle damage and collision", Active: true},
	{Name: "Home", Description: "Property damage to a residence", Active: true},
	{Name: "Health", Description: "Medical expenses", Active: true},
	{Name: "Travel", Description: "Trip cancellation and lost luggage", Active: true},
}

func SeedClaimTypes(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&ctDomain.ClaimType{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	rows := make([]ctDomain.ClaimType, len(DefaultClaimTypes))
	copy(rows, DefaultClaimTypes)
	return db.WithContext(ctx).Create(&rows).Error
}
