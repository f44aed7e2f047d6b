package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"loan-servicing/configs"
	"loan-servicing/internal/middleware"
	"loan-servicing/internal/service"
	"loan-servicing/pkg/utils"
)

// Dependencies contains handler dependencies
type Dependencies struct {
	Services *service.Service
	Logger   *logrus.Logger
	Config   *configs.Config
}

// Handler contains all HTTP handlers for the application
type Handler struct {
	User           *UserHandler
	Organization   *OrganizationHandler
	Borrower       *BorrowerHandler
	Property       *PropertyHandler
	Loan           *LoanHandler
	Payment        *PaymentHandler
	Import         *ImportHandler
	Reconciliation *ReconciliationHandler
	Audit          *AuditHandler
}

// NewHandler creates a new Handler with all subhandlers
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		User:           NewUserHandler(deps.Services.User, deps.Logger, deps.Config),
		Organization:   NewOrganizationHandler(deps.Services.Organization, deps.Logger),
		Borrower:       NewBorrowerHandler(deps.Services.Borrower, deps.Logger),
		Property:       NewPropertyHandler(deps.Services.Property, deps.Logger),
		Loan:           NewLoanHandler(deps.Services.Loan, deps.Logger),
		Payment:        NewPaymentHandler(deps.Services.Payment, deps.Logger),
		Import:         NewImportHandler(deps.Services.Import, deps.Logger),
		Reconciliation: NewReconciliationHandler(deps.Services.Reconciliation, deps.Logger),
		Audit:          NewAuditHandler(deps.Services.Audit, deps.Logger),
	}
}

// requestIdentity reads the authenticated organization and user from the
// request context. It reports false, with the error response already sent,
// when either is missing.
func requestIdentity(w http.ResponseWriter, r *http.Request) (organizationID, userID int, ok bool) {
	organizationID, ok = r.Context().Value(middleware.ContextOrganizationID).(int)
	if !ok {
		utils.RespondWithError(w, http.StatusInternalServerError, "organization ID not found in context")
		return 0, 0, false
	}

	userID, ok = r.Context().Value(middleware.ContextUserID).(int)
	if !ok {
		utils.RespondWithError(w, http.StatusInternalServerError, "user ID not found in context")
		return 0, 0, false
	}

	return organizationID, userID, true
}
