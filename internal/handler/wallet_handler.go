package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rupayx/wallet-service/internal/infrastructure/auth"
	"github.com/rupayx/wallet-service/internal/models"
	"github.com/rupayx/wallet-service/internal/views"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
	"github.com/shopspring/decimal"
)

type transactionResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Amount     string `json:"amount"`
	Commission string `json:"commission,omitempty"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Details    string `json:"details,omitempty"`
	Screenshot string `json:"screenshot,omitempty"`
	UserEmail  string `json:"userEmail"`
	TaskTitle  string `json:"taskTitle,omitempty"`
}

func toTransactionResponse(tx *models.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:         tx.ID,
		Type:       string(tx.Type),
		Amount:     tx.Amount.String(),
		Date:       tx.Date.Format("2006-01-02T15:04:05Z07:00"),
		Status:     string(tx.Status),
		Details:    tx.Details,
		Screenshot: tx.Screenshot,
		UserEmail:  tx.UserEmail,
		TaskTitle:  tx.TaskTitle,
	}
	if !tx.Commission.IsZero() {
		resp.Commission = tx.Commission.String()
	}
	return resp
}

func toTransactionList(txs []models.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, toTransactionResponse(&txs[i]))
	}
	return out
}

func (h *Handler) subject(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, errors.New("user not authenticated"))
	}
	return email, ok
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	email, ok := h.subject(w, r)
	if !ok {
		return
	}

	txs, err := h.ledger.History(r.Context(), email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toTransactionList(txs))
}

func (h *Handler) SubmitBuy(w http.ResponseWriter, r *http.Request) {
	email, ok := h.subject(w, r)
	if !ok {
		return
	}

	var req struct {
		TaskID     string `json:"taskId"`
		Utr        string `json:"utr"`
		Screenshot string `json:"screenshot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	tx, err := h.ledger.SubmitBuy(r.Context(), email, req.TaskID, req.Utr, req.Screenshot)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (h *Handler) SubmitSell(w http.ResponseWriter, r *http.Request) {
	email, ok := h.subject(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount         string `json:"amount"`
		DestinationUpi string `json:"destinationUpi"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: invalid amount", pkgerrors.ErrValidation))
		return
	}

	tx, err := h.ledger.SubmitSell(r.Context(), email, amount, req.DestinationUpi)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (h *Handler) ListUpi(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.upi.ListAccounts(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) AddUpi(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UpiID   string `json:"upiId"`
		AppName string `json:"appName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	account, err := h.upi.AddAccount(r.Context(), req.UpiID, models.UpiApp(req.AppName))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, account)
}

func (h *Handler) RemoveUpi(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.upi.RemoveAccount(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.admin.ListTasks(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) BankDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.admin.BankDetails(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, details)
}

func (h *Handler) HelpLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.admin.HelpLinks(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, links)
}

func (h *Handler) AskAssistant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	answer := h.assistant.Ask(r.Context(), req.Prompt)
	h.writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	email, ok := h.subject(w, r)
	if !ok {
		return
	}

	state, err := h.sessions.Load(r.Context(), email)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	raw, err := views.Marshal(state)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// SetView accepts either a navigation action ("back" or "tick") applied to
// the saved view, or a full view envelope replacing it.
func (h *Handler) SetView(w http.ResponseWriter, r *http.Request) {
	email, ok := h.subject(w, r)
	if !ok {
		return
	}

	var req struct {
		Action string          `json:"action,omitempty"`
		View   string          `json:"view,omitempty"`
		Data   json.RawMessage `json:"data,omitempty"`
	}
	body := json.NewDecoder(r.Body)
	if err := body.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	var next views.State
	switch req.Action {
	case "back", "tick":
		current, err := h.sessions.Load(r.Context(), email)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, err)
			return
		}
		if req.Action == "back" {
			next = views.Back(current)
		} else {
			next = views.Tick(current)
		}
	case "":
		raw, err := json.Marshal(map[string]interface{}{"view": req.View, "data": req.Data})
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		next, err = views.Unmarshal(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
	default:
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown action %q", req.Action))
		return
	}

	if err := h.sessions.Save(r.Context(), email, next); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	raw, err := views.Marshal(next)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}
