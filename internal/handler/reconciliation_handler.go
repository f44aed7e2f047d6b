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

// ReconciliationHandler handles bank statement reconciliation HTTP requests
type ReconciliationHandler struct {
	reconciliationService service.ReconciliationService
	logger                *logrus.Logger
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconciliationService service.ReconciliationService, logger *logrus.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
		logger:                logger,
	}
}

// ImportStatement handles uploading a camt.053 bank statement
func (h *ReconciliationHandler) ImportStatement(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	count, err := h.reconciliationService.ImportStatement(r.Context(), organizationID, userID, file)
	if err != nil {
		h.logger.Warnf("Failed to import statement: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "statement imported successfully", map[string]interface{}{
		"lines_imported": count,
	})
}

// GetUnmatched handles retrieving unmatched statement lines
func (h *ReconciliationHandler) GetUnmatched(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	lines, err := h.reconciliationService.GetUnmatched(r.Context(), organizationID)
	if err != nil {
		h.logger.Warnf("Failed to get unmatched lines: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get unmatched lines")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "unmatched lines retrieved successfully", lines)
}

// SuggestMatches handles computing match suggestions
func (h *ReconciliationHandler) SuggestMatches(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	suggestions, err := h.reconciliationService.SuggestMatches(r.Context(), organizationID)
	if err != nil {
		h.logger.Warnf("Failed to suggest matches: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to suggest matches")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "match suggestions computed successfully", suggestions)
}

// ConfirmMatch handles confirming a suggested match
func (h *ReconciliationHandler) ConfirmMatch(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	var confirmation models.MatchConfirmation
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&confirmation); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.reconciliationService.ConfirmMatch(r.Context(), organizationID, userID, &confirmation); err != nil {
		h.logger.Warnf("Failed to confirm match: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "match confirmed successfully", nil)
}

// Ignore handles marking a statement line as irrelevant
func (h *ReconciliationHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid bank transaction ID")
		return
	}

	if err := h.reconciliationService.Ignore(r.Context(), organizationID, userID, id); err != nil {
		h.logger.Warnf("Failed to ignore bank transaction: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "bank transaction ignored successfully", nil)
}
