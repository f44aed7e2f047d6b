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

// BorrowerHandler handles borrower HTTP requests
type BorrowerHandler struct {
	borrowerService service.BorrowerService
	logger          *logrus.Logger
}

// NewBorrowerHandler creates a new BorrowerHandler
func NewBorrowerHandler(borrowerService service.BorrowerService, logger *logrus.Logger) *BorrowerHandler {
	return &BorrowerHandler{
		borrowerService: borrowerService,
		logger:          logger,
	}
}

// Create handles borrower creation
func (h *BorrowerHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var request models.BorrowerRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&request); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	id, err := h.borrowerService.Create(r.Context(), organizationID, userID, &request)
	if err != nil {
		h.logger.Warnf("Failed to create borrower: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "borrower created successfully", map[string]interface{}{
		"borrower_id": id,
	})
}

// GetAll handles retrieving all borrowers
func (h *BorrowerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	borrowers, err := h.borrowerService.GetByOrganization(r.Context(), organizationID)
	if err != nil {
		h.logger.Warnf("Failed to get borrowers: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get borrowers")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "borrowers retrieved successfully", borrowers)
}

// GetByID handles retrieving a borrower by ID
func (h *BorrowerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid borrower ID")
		return
	}

	borrower, err := h.borrowerService.GetByID(r.Context(), organizationID, id)
	if err != nil {
		h.logger.Warnf("Failed to get borrower: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "borrower not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "borrower retrieved successfully", borrower)
}

// Update handles updating a borrower
func (h *BorrowerHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid borrower ID")
		return
	}

	var request models.BorrowerRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&request); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.borrowerService.Update(r.Context(), organizationID, userID, id, &request); err != nil {
		h.logger.Warnf("Failed to update borrower: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "borrower updated successfully", nil)
}

// Delete handles deleting a borrower
func (h *BorrowerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid borrower ID")
		return
	}

	if err := h.borrowerService.Delete(r.Context(), organizationID, userID, id); err != nil {
		h.logger.Warnf("Failed to delete borrower: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "borrower deleted successfully", nil)
}
