package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// User represents a back-office user belonging to an organization
type User struct {
	ID             int       `json:"id" db:"id"`
	OrganizationID int       `json:"organization_id" db:"organization_id"`
	Email          string    `json:"email" db:"email"`
	Password       string    `json:"-" db:"-"`
	PassHash       string    `json:"-" db:"password_hash"`
	FirstName      string    `json:"first_name,omitempty" db:"first_name"`
	LastName       string    `json:"last_name,omitempty" db:"last_name"`
	Role           Role      `json:"role" db:"role"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// UserRegistration represents registration data for the first user of a new
// organization
type UserRegistration struct {
	OrganizationName string `json:"organization_name" binding:"required"`
	Email            string `json:"email" binding:"required"`
	Password         string `json:"password" binding:"required"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
}

// UserLogin represents user login data
type UserLogin struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents the JWT token response
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// Invitation represents a pending invitation to join an organization
type Invitation struct {
	ID             int        `json:"id" db:"id"`
	OrganizationID int        `json:"organization_id" db:"organization_id"`
	Email          string     `json:"email" db:"email"`
	Role           Role       `json:"role" db:"role"`
	Token          string     `json:"-" db:"token"`
	InvitedBy      int        `json:"invited_by" db:"invited_by"`
	ExpiresAt      time.Time  `json:"expires_at" db:"expires_at"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// InvitationRequest represents a request to invite a user
type InvitationRequest struct {
	Email string `json:"email" binding:"required"`
	Role  Role   `json:"role" binding:"required"`
}

// InvitationAccept represents the payload for accepting an invitation
type InvitationAccept struct {
	Token     string `json:"token" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// validatePassword enforces the password policy shared by registration and
// invitation acceptance
func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hasUppercase := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasLowercase := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasUppercase || !hasLowercase || !hasNumber {
		return errors.New("password must contain at least one uppercase letter, one lowercase letter, and one number")
	}
	return nil
}

// ValidateRegistration validates user registration data
func (u *UserRegistration) ValidateRegistration() error {
	u.OrganizationName = strings.TrimSpace(u.OrganizationName)
	u.Email = strings.TrimSpace(u.Email)
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)

	if len(u.OrganizationName) < 2 {
		return errors.New("organization name must be at least 2 characters")
	}
	if !emailPattern.MatchString(u.Email) {
		return errors.New("invalid email format")
	}
	return validatePassword(u.Password)
}

// ToUser converts UserRegistration to a User; the first user of a new
// organization is always its admin
func (u *UserRegistration) ToUser(organizationID int) *User {
	return &User{
		OrganizationID: organizationID,
		Email:          u.Email,
		Password:       u.Password,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           RoleAdmin,
		IsActive:       true,
	}
}

// ValidateInvitationRequest validates an invitation request
func (i *InvitationRequest) ValidateInvitationRequest() error {
	i.Email = strings.TrimSpace(i.Email)
	if !emailPattern.MatchString(i.Email) {
		return errors.New("invalid email format")
	}
	if !ValidRole(i.Role) {
		return errors.New("invalid role")
	}
	return nil
}

// ValidateInvitationAccept validates invitation acceptance data
func (i *InvitationAccept) ValidateInvitationAccept() error {
	if strings.TrimSpace(i.Token) == "" {
		return errors.New("invitation token is required")
	}
	return validatePassword(i.Password)
}
