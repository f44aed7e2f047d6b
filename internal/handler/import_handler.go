package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"loan-servicing/internal/models"
	"loan-servicing/internal/service"
	"loan-servicing/pkg/utils"
)

// maxImportSize caps uploaded CSV files at 10 MB
const maxImportSize = 10 << 20

// ImportHandler handles CSV import HTTP requests
type ImportHandler struct {
	importService service.ImportService
	logger        *logrus.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService service.ImportService, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		logger:        logger,
	}
}

// ImportBorrowers handles a borrowers CSV upload
func (h *ImportHandler) ImportBorrowers(w http.ResponseWriter, r *http.Request) {
	h.runImport(w, r, h.importService.ImportBorrowers)
}

// ImportLoans handles a loans CSV upload
func (h *ImportHandler) ImportLoans(w http.ResponseWriter, r *http.Request) {
	h.runImport(w, r, h.importService.ImportLoans)
}

// ImportPayments handles a payments CSV upload
func (h *ImportHandler) ImportPayments(w http.ResponseWriter, r *http.Request) {
	h.runImport(w, r, h.importService.ImportPayments)
}

// GetBatches handles retrieving past import batches
func (h *ImportHandler) GetBatches(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	batches, err := h.importService.GetBatches(r.Context(), organizationID)
	if err != nil {
		h.logger.Warnf("Failed to get import batches: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get import batches")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "import batches retrieved successfully", batches)
}

// importFunc is the shape shared by the per-entity import operations
type importFunc func(ctx context.Context, organizationID, userID int, fileName string, r io.Reader) (*models.ImportResult, error)

func (h *ImportHandler) runImport(w http.ResponseWriter, r *http.Request, run importFunc) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	result, err := run(r.Context(), organizationID, userID, header.Filename, file)
	if err != nil {
		h.logger.Warnf("Import failed: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "import finished", result)
}
