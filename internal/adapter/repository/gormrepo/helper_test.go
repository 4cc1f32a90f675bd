package gormrepo

import (
	"context"
	"testing"
	"time"

	claimDomain "insurance-claims-backend/internal/domain/claim"
	userDomain "insurance-claims-backend/internal/domain/user"
	"insurance-claims-backend/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB creates an in-memory sqlite DB with the full schema. A single
// connection keeps every query on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeClaim(claimantID string, typeID uint64) *claimDomain.Claim {
	return &claimDomain.Claim{
		ClaimID:      id.NewID32(),
		ClaimantID:   claimantID,
		ClaimTypeID:  typeID,
		Status:       claimDomain.StatusPending,
		Description:  "cracked windshield",
		IncidentDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func makeUser(username string, role userDomain.Role, active bool) *userDomain.User {
	return &userDomain.User{
		UserID:       id.NewID32(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Active:       active,
	}
}
