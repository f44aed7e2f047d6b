package models

import (
	"errors"
	"strings"
	"time"
)

// Borrower represents a borrower record owned by an organization
type Borrower struct {
	ID             int       `json:"id" db:"id"`
	OrganizationID int       `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email,omitempty" db:"email"`
	Phone          string    `json:"phone,omitempty" db:"phone"`
	AddressLine1   string    `json:"address_line1,omitempty" db:"address_line1"`
	AddressLine2   string    `json:"address_line2,omitempty" db:"address_line2"`
	City           string    `json:"city,omitempty" db:"city"`
	Postcode       string    `json:"postcode,omitempty" db:"postcode"`
	CompanyNumber  string    `json:"company_number,omitempty" db:"company_number"`
	Notes          string    `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// BorrowerRequest represents borrower create/update data
type BorrowerRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	AddressLine1  string `json:"address_line1,omitempty"`
	AddressLine2  string `json:"address_line2,omitempty"`
	City          string `json:"city,omitempty"`
	Postcode      string `json:"postcode,omitempty"`
	CompanyNumber string `json:"company_number,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// ValidateBorrowerRequest validates borrower data
func (b *BorrowerRequest) ValidateBorrowerRequest() error {
	b.Name = strings.TrimSpace(b.Name)
	b.Email = strings.TrimSpace(b.Email)

	if len(b.Name) < 2 || len(b.Name) > 200 {
		return errors.New("borrower name must be between 2 and 200 characters")
	}
	if b.Email != "" && !emailPattern.MatchString(b.Email) {
		return errors.New("invalid email format")
	}
	return nil
}

// ToBorrower converts BorrowerRequest to Borrower
func (b *BorrowerRequest) ToBorrower(organizationID int) *Borrower {
	return &Borrower{
		OrganizationID: organizationID,
		Name:           b.Name,
		Email:          b.Email,
		Phone:          b.Phone,
		AddressLine1:   b.AddressLine1,
		AddressLine2:   b.AddressLine2,
		City:           b.City,
		Postcode:       b.Postcode,
		CompanyNumber:  b.CompanyNumber,
		Notes:          b.Notes,
	}
}
