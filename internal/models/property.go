package models

import (
	"errors"
	"strings"
	"time"
)

// PropertyType defines the kind of security held against a loan
type PropertyType string

const (
	PropertyTypeResidential PropertyType = "RESIDENTIAL"
	PropertyTypeCommercial  PropertyType = "COMMERCIAL"
	PropertyTypeLand        PropertyType = "LAND"
	PropertyTypeMixedUse    PropertyType = "MIXED_USE"
)

// Property represents a property held as security for a loan
type Property struct {
	ID             int          `json:"id" db:"id"`
	OrganizationID int          `json:"organization_id" db:"organization_id"`
	LoanID         *int         `json:"loan_id,omitempty" db:"loan_id"`
	AddressLine1   string       `json:"address_line1" db:"address_line1"`
	AddressLine2   string       `json:"address_line2,omitempty" db:"address_line2"`
	City           string       `json:"city,omitempty" db:"city"`
	Postcode       string       `json:"postcode" db:"postcode"`
	PropertyType   PropertyType `json:"property_type" db:"property_type"`
	ValuationAmount float64     `json:"valuation_amount" db:"valuation_amount"`
	ValuationDate  *time.Time   `json:"valuation_date,omitempty" db:"valuation_date"`
	TitleNumber    string       `json:"title_number,omitempty" db:"title_number"`
	ChargeRank     int          `json:"charge_rank" db:"charge_rank"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// PropertyRequest represents property create/update data
type PropertyRequest struct {
	LoanID          *int         `json:"loan_id,omitempty"`
	AddressLine1    string       `json:"address_line1" binding:"required"`
	AddressLine2    string       `json:"address_line2,omitempty"`
	City            string       `json:"city,omitempty"`
	Postcode        string       `json:"postcode" binding:"required"`
	PropertyType    PropertyType `json:"property_type" binding:"required"`
	ValuationAmount float64      `json:"valuation_amount,omitempty"`
	ValuationDate   *time.Time   `json:"valuation_date,omitempty"`
	TitleNumber     string       `json:"title_number,omitempty"`
	ChargeRank      int          `json:"charge_rank,omitempty"`
}

// ValidatePropertyRequest validates property data
func (p *PropertyRequest) ValidatePropertyRequest() error {
	p.AddressLine1 = strings.TrimSpace(p.AddressLine1)
	p.Postcode = strings.TrimSpace(p.Postcode)

	if p.AddressLine1 == "" {
		return errors.New("address line 1 is required")
	}
	if p.Postcode == "" {
		return errors.New("postcode is required")
	}
	switch p.PropertyType {
	case PropertyTypeResidential, PropertyTypeCommercial, PropertyTypeLand, PropertyTypeMixedUse:
	default:
		return errors.New("invalid property type")
	}
	if p.ValuationAmount < 0 {
		return errors.New("valuation amount cannot be negative")
	}
	if p.ChargeRank < 0 {
		return errors.New("charge rank cannot be negative")
	}
	return nil
}

// ToProperty converts PropertyRequest to Property
func (p *PropertyRequest) ToProperty(organizationID int) *Property {
	chargeRank := p.ChargeRank
	if chargeRank == 0 {
		chargeRank = 1
	}
	return &Property{
		OrganizationID:  organizationID,
		LoanID:          p.LoanID,
		AddressLine1:    p.AddressLine1,
		AddressLine2:    p.AddressLine2,
		City:            p.City,
		Postcode:        p.Postcode,
		PropertyType:    p.PropertyType,
		ValuationAmount: p.ValuationAmount,
		ValuationDate:   p.ValuationDate,
		TitleNumber:     p.TitleNumber,
		ChargeRank:      chargeRank,
	}
}

// LoanToValue returns the loan principal as a percentage of the property
// valuation, or 0 when no valuation is held.
func (p *Property) LoanToValue(principal float64) float64 {
	if p.ValuationAmount <= 0 {
		return 0
	}
	return principal / p.ValuationAmount * 100
}
