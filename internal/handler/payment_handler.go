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

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService service.PaymentService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// Apply handles recording a payment against a loan
func (h *PaymentHandler) Apply(w http.ResponseWriter, r *http.Request) {
	organizationID, userID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	loanID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid loan ID")
		return
	}

	var request models.PaymentRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&request); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	payment, err := h.paymentService.Apply(r.Context(), organizationID, userID, loanID, &request)
	if err != nil {
		h.logger.Warnf("Failed to apply payment: %v", err)
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "payment applied successfully", payment)
}

// GetAll handles retrieving all payments for the organization
func (h *PaymentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	payments, err := h.paymentService.GetByOrganization(r.Context(), organizationID)
	if err != nil {
		h.logger.Warnf("Failed to get payments: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get payments")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "payments retrieved successfully", payments)
}

// GetByLoan handles retrieving the payments for a loan
func (h *PaymentHandler) GetByLoan(w http.ResponseWriter, r *http.Request) {
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

	payments, err := h.paymentService.GetByLoanID(r.Context(), organizationID, loanID)
	if err != nil {
		h.logger.Warnf("Failed to get payments: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to get payments")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "payments retrieved successfully", payments)
}

// GetByID handles retrieving a payment by ID
func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	organizationID, _, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetByID(r.Context(), organizationID, id)
	if err != nil {
		h.logger.Warnf("Failed to get payment: %v", err)
		utils.RespondWithError(w, http.StatusNotFound, "payment not found")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "payment retrieved successfully", payment)
}
