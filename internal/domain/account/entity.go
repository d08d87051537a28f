// internal/domain/account/entity.go
package account

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/commerce-core/internal/pkg/auth"
)

// Account represents a registered shopper or staff identity. Guest
// shoppers have no account; they exist only as sessions until they
// register, log in, or claim an order.
type Account struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string         `gorm:"not null;size:255" json:"-"`
	FirstName    string         `gorm:"size:100" json:"first_name"`
	LastName     string         `gorm:"size:100" json:"last_name"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	IsAdmin      bool           `gorm:"default:false" json:"is_admin"`
	Permissions  []string       `gorm:"type:jsonb;serializer:json" json:"permissions,omitempty"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// BeforeCreate hook to handle business logic before account creation
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	// Email should be lowercase
	a.Email = strings.ToLower(a.Email)
	return nil
}

// Scope returns the token scope this account authenticates under
func (a *Account) Scope() string {
	if a.IsAdmin {
		return auth.ScopeAdmin
	}
	return auth.ScopeCustomer
}

// GetFullName returns the account holder's full name
func (a *Account) GetFullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
