package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"loan-servicing/internal/models"
	"loan-servicing/internal/service"
	"loan-servicing/pkg/utils"
)

// PropertyHandler handles security property HTTP requests
type PropertyHandler struct {
	propertyService service.PropertyService
	logger          *logrus.Logger
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(propertyService service.PropertyService, logger *logrus.Logger) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		logger:          logger,
	}
}

// Create handles property creation
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var request models.PropertyRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&request); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	id, err := h.propertyService.Create(r.Context(), organizationID, userID, &request)
	if err != nil {
		h.logger.Warnf("Failed to create property: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "property created successfully", map[string]interface{}{
		"property_id": id,
	})
}

// GetAll handles retrieving all properties
func (h *PropertyHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	properties, err := h.propertyService.GetByOrganization(r.Context(), organizationID)
	if err != nil {
		h.logger.Warnf("Failed to get properties: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get properties")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "properties retrieved successfully", properties)
}

// GetByLoan handles retrieving the properties securing a loan
func (h *PropertyHandler) GetByLoan(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	loanID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	properties, err := h.propertyService.GetByLoanID(r.Context(), organizationID, loanID)
	if err != nil {
		h.logger.Warnf("Failed to get properties for loan %d: %v", loanID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get properties")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "properties retrieved successfully", properties)
}

// GetByID handles retrieving a property by ID
func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid property ID")
		return
	}

	property, err := h.propertyService.GetByID(r.Context(), organizationID, id)
	if err != nil {
		h.logger.Warnf("Failed to get property: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "property not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "property retrieved successfully", property)
}

// Update handles updating a property
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid property ID")
		return
	}

	var request models.PropertyRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&request); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.propertyService.Update(r.Context(), organizationID, userID, id, &request); err != nil {
		h.logger.Warnf("Failed to update property: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "property updated successfully", nil)
}

// Delete handles deleting a property
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid property ID")
		return
	}

	if err := h.propertyService.Delete(r.Context(), organizationID, userID, id); err != nil {
		h.logger.Warnf("Failed to delete property: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "property deleted successfully", nil)
}
