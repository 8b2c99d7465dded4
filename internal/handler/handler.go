package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rupayx/wallet-service/internal/assistant"
	service "github.com/rupayx/wallet-service/internal/services"
	"github.com/rupayx/wallet-service/internal/views"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
)

type Handler struct {
	auth      service.AuthService
	ledger    service.LedgerService
	admin     service.AdminService
	upi       service.UpiService
	assistant assistant.AssistantClient
	sessions  *views.Store
}

func NewHandler(
	auth service.AuthService,
	ledger service.LedgerService,
	admin service.AdminService,
	upi service.UpiService,
	assistantClient assistant.AssistantClient,
	sessions *views.Store,
) *Handler {
	return &Handler{
		auth:      auth,
		ledger:    ledger,
		admin:     admin,
		upi:       upi,
		assistant: assistantClient,
		sessions:  sessions,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

// writeServiceError maps sentinel errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrValidation),
		errors.Is(err, pkgerrors.ErrMissingDestination),
		errors.Is(err, pkgerrors.ErrInsufficientFunds):
		h.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, pkgerrors.ErrInvalidCredentials),
		errors.Is(err, pkgerrors.ErrInvalidCode):
		h.writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, pkgerrors.ErrAccountBanned):
		h.writeError(w, http.StatusForbidden, err)
	case errors.Is(err, pkgerrors.ErrUserExists):
		h.writeError(w, http.StatusConflict, err)
	case errors.Is(err, pkgerrors.ErrCooldownActive):
		h.writeError(w, http.StatusTooManyRequests, err)
	case errors.Is(err, pkgerrors.ErrUserNotFound),
		errors.Is(err, pkgerrors.ErrTransactionNotFound),
		errors.Is(err, pkgerrors.ErrTaskNotFound),
		errors.Is(err, pkgerrors.ErrUpiNotFound),
		errors.Is(err, pkgerrors.ErrSettingNotFound):
		h.writeError(w, http.StatusNotFound, err)
	default:
		h.writeError(w, http.StatusInternalServerError, err)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/register/send-code", h.SendCode).Methods("POST")
	r.HandleFunc("/register/resend-code", h.SendCode).Methods("POST")
	r.HandleFunc("/register/verify", h.VerifyRegistration).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/admin/login", h.AdminLogin).Methods("POST")
}

func (h *Handler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.Me).Methods("GET")
	r.HandleFunc("/history", h.History).Methods("GET")
	r.HandleFunc("/buy", h.SubmitBuy).Methods("POST")
	r.HandleFunc("/sell", h.SubmitSell).Methods("POST")
	r.HandleFunc("/upi", h.ListUpi).Methods("GET")
	r.HandleFunc("/upi", h.AddUpi).Methods("POST")
	r.HandleFunc("/upi/{id}", h.RemoveUpi).Methods("DELETE")
	r.HandleFunc("/tasks", h.ListTasks).Methods("GET")
	r.HandleFunc("/bank-details", h.BankDetails).Methods("GET")
	r.HandleFunc("/help-links", h.HelpLinks).Methods("GET")
	r.HandleFunc("/assistant/ask", h.AskAssistant).Methods("POST")
	r.HandleFunc("/session/view", h.GetView).Methods("GET")
	r.HandleFunc("/session/view", h.SetView).Methods("POST")
}

func (h *Handler) RegisterAdminRoutes(r *mux.Router) {
	r.HandleFunc("/requests/{type}", h.PendingRequests).Methods("GET")
	r.HandleFunc("/transactions/{id}/status", h.SetTransactionStatus).Methods("POST")
	r.HandleFunc("/users", h.ListUsers).Methods("GET")
	r.HandleFunc("/users/ban", h.SetUserBanned).Methods("POST")
	r.HandleFunc("/users/balance", h.AdjustBalance).Methods("POST")
	r.HandleFunc("/bank-details", h.UpdateBankDetails).Methods("PUT")
	r.HandleFunc("/help-links", h.UpdateHelpLinks).Methods("PUT")
	r.HandleFunc("/tasks", h.CreateTask).Methods("POST")
	r.HandleFunc("/tasks/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/password", h.ChangeAdminPassword).Methods("POST")
}
