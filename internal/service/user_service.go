package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
	"loan-servicing/pkg/crypto"
)

// UserSvc is an implementation of the service.UserService interface
type UserSvc struct {
	repos     *repository.Repository
	logger    *logrus.Logger
	audit     AuditService
	email     EmailService
	hasher    *crypto.PasswordHasher
	jwtSecret string
	jwtTTL    time.Duration
}

// NewUserService creates a new UserSvc
func NewUserService(deps Dependencies, audit AuditService, email EmailService) *UserSvc {
	return &UserSvc{
		repos:     deps.Repos,
		logger:    deps.Logger,
		audit:     audit,
		email:     email,
		hasher:    crypto.NewPasswordHasher(),
		jwtSecret: deps.Config.JWT.Secret,
		jwtTTL:    time.Duration(deps.Config.JWT.TTL) * time.Hour,
	}
}

// Register creates a new organization together with its first user, who
// becomes the organization admin
func (s *UserSvc) Register(ctx context.Context, userReg *models.UserRegistration) (int, error) {
	if err := userReg.ValidateRegistration(); err != nil {
		return 0, fmt.Errorf("invalid registration data: %w", err)
	}

	_, err := s.repos.User.GetByEmail(ctx, userReg.Email)
	if err == nil {
		return 0, errors.New("email already exists")
	}

	orgCreate := &models.OrganizationCreate{Name: userReg.OrganizationName}
	if err := orgCreate.ValidateOrganizationCreate(); err != nil {
		return 0, fmt.Errorf("invalid organization data: %w", err)
	}

	orgID, err := s.repos.Organization.Create(ctx, orgCreate.ToOrganization())
	if err != nil {
		return 0, fmt.Errorf("failed to create organization: %w", err)
	}

	user := userReg.ToUser(orgID)

	hashedPassword, err := s.hasher.HashPassword(user.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PassHash = hashedPassword

	id, err := s.repos.User.Create(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infof("Organization %d registered with admin user %d", orgID, id)

	return id, nil
}

// Login logs in a user and returns a JWT token carrying the user's
// organization and role
func (s *UserSvc) Login(ctx context.Context, login *models.UserLogin) (*models.TokenResponse, error) {
	user, err := s.repos.User.GetByEmail(ctx, login.Email)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}

	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}

	if !s.hasher.CheckPasswordHash(login.Password, user.PassHash) {
		return nil, errors.New("invalid credentials")
	}

	expirationTime := time.Now().Add(s.jwtTTL)

	claims := jwt.MapClaims{
		"user_id":         user.ID,
		"organization_id": user.OrganizationID,
		"role":            string(user.Role),
		"exp":             expirationTime.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Infof("User logged in: %d", user.ID)

	return &models.TokenResponse{
		Token:     tokenString,
		ExpiresAt: expirationTime.Unix(),
	}, nil
}

// GetByID gets a user by ID
func (s *UserSvc) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repos.User.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.PassHash = ""

	return user, nil
}

// GetByOrganization gets all users of an organization
func (s *UserSvc) GetByOrganization(ctx context.Context, organizationID int) ([]*models.User, error) {
	users, err := s.repos.User.GetByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	for _, user := range users {
		user.PassHash = ""
	}

	return users, nil
}

// Deactivate deactivates a user within an organization
func (s *UserSvc) Deactivate(ctx context.Context, organizationID, id int) error {
	if err := s.repos.User.Deactivate(ctx, organizationID, id); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	s.logger.Infof("User deactivated: %d", id)

	return nil
}

// Invite creates an invitation for a new user to join the organization and
// emails the invitation link
func (s *UserSvc) Invite(ctx context.Context, organizationID, invitedBy int, req *models.InvitationRequest) (*models.Invitation, error) {
	if err := req.ValidateInvitationRequest(); err != nil {
		return nil, fmt.Errorf("invalid invitation data: %w", err)
	}

	_, err := s.repos.User.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, errors.New("a user with this email already exists")
	}

	invitation := &models.Invitation{
		OrganizationID: organizationID,
		Email:          req.Email,
		Role:           req.Role,
		Token:          uuid.NewString(),
		InvitedBy:      invitedBy,
		ExpiresAt:      time.Now().Add(invitationTTL),
	}

	id, err := s.repos.Invitation.Create(ctx, invitation)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	invitation.ID = id

	org, err := s.repos.Organization.GetByID(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	if err := s.email.SendInvitation(ctx, invitation, org.Name); err != nil {
		// The invitation stands even if the email fails; the token can be
		// resent from the invitations list.
		s.logger.Errorf("Failed to send invitation email to %s: %v", invitation.Email, err)
	}

	s.audit.Record(ctx, organizationID, invitedBy, "invitation", id, models.AuditActionCreate, fmt.Sprintf("invited %s as %s", req.Email, req.Role))

	return invitation, nil
}

// AcceptInvitation creates a user from a pending invitation
func (s *UserSvc) AcceptInvitation(ctx context.Context, accept *models.InvitationAccept) (int, error) {
	if err := accept.ValidateInvitationAccept(); err != nil {
		return 0, fmt.Errorf("invalid acceptance data: %w", err)
	}

	invitation, err := s.repos.Invitation.GetByToken(ctx, accept.Token)
	if err != nil {
		return 0, errors.New("invitation not found")
	}

	if invitation.AcceptedAt != nil {
		return 0, errors.New("invitation already accepted")
	}
	if time.Now().After(invitation.ExpiresAt) {
		return 0, errors.New("invitation has expired")
	}

	hashedPassword, err := s.hasher.HashPassword(accept.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		OrganizationID: invitation.OrganizationID,
		Email:          invitation.Email,
		PassHash:       hashedPassword,
		FirstName:      accept.FirstName,
		LastName:       accept.LastName,
		Role:           invitation.Role,
		IsActive:       true,
	}

	id, err := s.repos.User.Create(ctx, user)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.repos.Invitation.MarkAccepted(ctx, invitation.ID); err != nil {
		return 0, fmt.Errorf("failed to mark invitation accepted: %w", err)
	}

	s.logger.Infof("Invitation %d accepted, user %d created", invitation.ID, id)

	return id, nil
}
