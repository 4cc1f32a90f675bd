package claimtype

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("claim type not found")

type ClaimType struct {
	ID          uint64    `gorm:"primaryKey;column:id" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex:ux_claim_types_name" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Active      bool      `gorm:"not null" json:"active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ClaimType) TableName() string { return "claim_types" }

// Entitlement grants a claimant the right to file claims of one type.
type Entitlement struct {
	UserID      string `gorm:"primaryKey;size:32" json:"user_id"`
	ClaimTypeID uint64 `gorm:"primaryKey" json:"claim_type_id"`
}

func (Entitlement) TableName() string { return "user_claim_types" }

// Allows reports whether id is among the allowed types.
func Allows(allowed []ClaimType, id uint64) bool {
	for _, t := range allowed {
		if t.ID == id && t.Active {
			return true
		}
	}
	return false
}
