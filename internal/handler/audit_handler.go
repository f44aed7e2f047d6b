package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"loan-servicing/internal/service"
	"loan-servicing/pkg/utils"
)

// AuditHandler handles audit log HTTP requests
type AuditHandler struct {
	auditService service.AuditService
	logger       *logrus.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService service.AuditService, logger *logrus.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// GetAll handles retrieving recent audit entries
func (h *AuditHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.auditService.GetByOrganization(r.Context(), organizationID, limit)
	if err != nil {
		h.logger.Warnf("Failed to get audit entries: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get audit entries")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "audit entries retrieved successfully", entries)
}

// GetByEntity handles retrieving the audit trail for one entity
func (h *AuditHandler) GetByEntity(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	entityType := vars["type"]
	entityID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid entity ID")
		return
	}

	entries, err := h.auditService.GetByEntity(r.Context(), organizationID, entityType, entityID)
	if err != nil {
		h.logger.Warnf("Failed to get audit entries: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get audit entries")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "audit entries retrieved successfully", entries)
}
