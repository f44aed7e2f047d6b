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

// LoanHandler handles loan and schedule HTTP requests
type LoanHandler struct {
	loanService service.LoanService
	logger      *logrus.Logger
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService service.LoanService, logger *logrus.Logger) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		logger:      logger,
	}
}

// Create handles loan creation
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var request models.LoanRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&request); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	id, err := h.loanService.Create(r.Context(), organizationID, userID, &request)
	if err != nil {
		h.logger.Warnf("Failed to create loan: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "loan created successfully", map[string]interface{}{
		"loan_id": id,
	})
}

// GetAll handles retrieving all loans, optionally filtered by borrower
func (h *LoanHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var loans []*models.Loan
	var err error

	if borrowerParam := r.URL.Query().Get("borrower_id"); borrowerParam != "" {
		borrowerID, convErr := strconv.Atoi(borrowerParam)
		if convErr != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid borrower ID")
			return
		}
		loans, err = h.loanService.GetByBorrower(r.Context(), organizationID, borrowerID)
	} else {
		loans, err = h.loanService.GetByOrganization(r.Context(), organizationID)
	}

	if err != nil {
		h.logger.Warnf("Failed to get loans: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get loans")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loans retrieved successfully", loans)
}

// GetByID handles retrieving a loan with its live accrual figures
func (h *LoanHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	detail, err := h.loanService.GetDetail(r.Context(), organizationID, id)
	if err != nil {
		h.logger.Warnf("Failed to get loan: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "loan not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loan retrieved successfully", detail)
}

// Update handles updating loan terms
func (h *LoanHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	var request models.LoanRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&request); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.loanService.Update(r.Context(), organizationID, userID, id, &request); err != nil {
		h.logger.Warnf("Failed to update loan: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loan updated successfully", nil)
}

// UpdateStatus handles updating only the loan status
func (h *LoanHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	var request struct {
		Status models.LoanStatus `json:"status"`
	}
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&request); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.loanService.UpdateStatus(r.Context(), organizationID, userID, id, request.Status); err != nil {
		h.logger.Warnf("Failed to update loan status: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loan status updated successfully", nil)
}

// Delete handles deleting a loan
func (h *LoanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	if err := h.loanService.Delete(r.Context(), organizationID, userID, id); err != nil {
		h.logger.Warnf("Failed to delete loan: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "loan deleted successfully", nil)
}

// GetSchedule handles retrieving the repayment schedule for a loan
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	entries, summary, err := h.loanService.GetSchedule(r.Context(), organizationID, id)
	if err != nil {
		h.logger.Warnf("Failed to get schedule: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "schedule not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "schedule retrieved successfully", map[string]interface{}{
		"installments": entries,
		"summary":      summary,
	})
}

// RegenerateSchedule handles rebuilding the schedule from current loan terms
func (h *LoanHandler) RegenerateSchedule(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	if err := h.loanService.RegenerateSchedule(r.Context(), organizationID, userID, id); err != nil {
		h.logger.Warnf("Failed to regenerate schedule: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "schedule regenerated successfully", nil)
}
