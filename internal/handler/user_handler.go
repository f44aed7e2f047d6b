package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"loan-servicing/configs"
	"loan-servicing/internal/models"
	"loan-servicing/internal/service"
	"loan-servicing/pkg/utils"
)

// UserHandler handles user and invitation HTTP requests
type UserHandler struct {
	userService service.UserService
	logger      *logrus.Logger
	config      *configs.Config
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *logrus.Logger, config *configs.Config) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
		config:      config,
	}
}

// Register handles registration of a new organization with its first user
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registration models.UserRegistration
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&registration); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	userID, err := h.userService.Register(r.Context(), &registration)
	if err != nil {
		h.logger.Warnf("Failed to register user: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "user registered successfully", map[string]interface{}{
		"user_id": userID,
	})
}

// Login handles user login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var login models.UserLogin
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&login); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	token, err := h.userService.Login(r.Context(), &login)
	if err != nil {
		h.logger.Warnf("Failed login attempt for %s: %v", login.Email, err)
		utils.RespondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "login successful", token)
}

// GetMe handles retrieving the authenticated user
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		h.logger.Warnf("Failed to get user: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "user retrieved successfully", user)
}

// GetAll handles retrieving all users of the organization
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	users, err := h.userService.GetByOrganization(r.Context(), organizationID)
	if err != nil {
		h.logger.Warnf("Failed to get users: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get users")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "users retrieved successfully", users)
}

// Deactivate handles deactivating a user
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.userService.Deactivate(r.Context(), organizationID, id); err != nil {
		h.logger.Warnf("Failed to deactivate user: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "user deactivated successfully", nil)
}

// Invite handles inviting a new user to the organization
func (h *UserHandler) Invite(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var request models.InvitationRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&request); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	invitation, err := h.userService.Invite(r.Context(), organizationID, userID, &request)
	if err != nil {
		h.logger.Warnf("Failed to create invitation: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "invitation sent successfully", invitation)
}

// AcceptInvitation handles accepting an invitation
func (h *UserHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var accept models.InvitationAccept
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&accept); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	userID, err := h.userService.AcceptInvitation(r.Context(), &accept)
	if err != nil {
		h.logger.Warnf("Failed to accept invitation: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "invitation accepted successfully", map[string]interface{}{
		"user_id": userID,
	})
}
