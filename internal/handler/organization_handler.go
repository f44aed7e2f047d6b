package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"loan-servicing/internal/models"
	"loan-servicing/internal/service"
	"loan-servicing/pkg/utils"
)

// OrganizationHandler handles organization HTTP requests
type OrganizationHandler struct {
	organizationService service.OrganizationService
	logger              *logrus.Logger
}

// NewOrganizationHandler creates a new OrganizationHandler
func NewOrganizationHandler(organizationService service.OrganizationService, logger *logrus.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		organizationService: organizationService,
		logger:              logger,
	}
}

// Get handles retrieving the authenticated user's organization
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	org, err := h.organizationService.GetByID(r.Context(), organizationID)
	if err != nil {
		h.logger.Warnf("Failed to get organization: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "organization not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "organization retrieved successfully", org)
}

// Update handles updating organization settings
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var orgCreate models.OrganizationCreate
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&orgCreate); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := orgCreate.ValidateOrganizationCreate(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	org := orgCreate.ToOrganization()
	org.ID = organizationID

	if err := h.organizationService.Update(r.Context(), org); err != nil {
		h.logger.Warnf("Failed to update organization: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "organization updated successfully", nil)
}
