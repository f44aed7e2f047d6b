package models

import (
	"errors"
	"strings"
	"time"
)

// Role defines a user's permission level within an organization
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleMember   Role = "MEMBER"
	RoleReadOnly Role = "READ_ONLY"
)

// Organization represents a tenant: every business row in the system is
// scoped to exactly one organization
type Organization struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CurrencyCode string    `json:"currency_code" db:"currency_code"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// OrganizationCreate represents data for creating a new organization
type OrganizationCreate struct {
	Name         string `json:"name" binding:"required"`
	CurrencyCode string `json:"currency_code,omitempty"`
}

// ValidateOrganizationCreate validates organization creation data
func (o *OrganizationCreate) ValidateOrganizationCreate() error {
	o.Name = strings.TrimSpace(o.Name)
	if len(o.Name) < 2 || len(o.Name) > 100 {
		return errors.New("organization name must be between 2 and 100 characters")
	}
	if o.CurrencyCode == "" {
		o.CurrencyCode = "GBP"
	}
	if len(o.CurrencyCode) != 3 {
		return errors.New("currency code must be a 3-letter ISO code")
	}
	o.CurrencyCode = strings.ToUpper(o.CurrencyCode)
	return nil
}

// ToOrganization converts OrganizationCreate to Organization
func (o *OrganizationCreate) ToOrganization() *Organization {
	return &Organization{
		Name:         o.Name,
		CurrencyCode: o.CurrencyCode,
	}
}

// ValidRole reports whether the role is one the system understands
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleMember, RoleReadOnly:
		return true
	}
	return false
}
