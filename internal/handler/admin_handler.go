package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rupayx/wallet-service/internal/models"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
	"github.com/shopspring/decimal"
)

func (h *Handler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	txType := models.TransactionType(mux.Vars(r)["type"])

	txs, err := h.ledger.PendingRequests(r.Context(), txType)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toTransactionList(txs))
}

func (h *Handler) SetTransactionStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.ledger.SetTransactionStatus(r.Context(), id, models.TransactionStatus(req.Status)); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) SetUserBanned(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string `json:"email"`
		Banned bool   `json:"banned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.admin.SetUserBanned(r.Context(), req.Email, req.Banned); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"email": req.Email, "banned": req.Banned})
}

func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Delta string `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	delta, err := decimal.NewFromString(req.Delta)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: invalid delta", pkgerrors.ErrValidation))
		return
	}

	if err := h.ledger.AdjustBalance(r.Context(), req.Email, delta); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"email": req.Email, "delta": delta.String()})
}

func (h *Handler) UpdateBankDetails(w http.ResponseWriter, r *http.Request) {
	var details models.BankDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.admin.UpdateBankDetails(r.Context(), &details); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, details)
}

func (h *Handler) UpdateHelpLinks(w http.ResponseWriter, r *http.Request) {
	var links models.HelpLinks
	if err := json.NewDecoder(r.Body).Decode(&links); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.admin.UpdateHelpLinks(r.Context(), &links); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, links)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string `json:"title"`
		Amount string `json:"amount"`
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

	task, err := h.admin.CreateTask(r.Context(), req.Title, amount)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.admin.DeleteTask(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ChangeAdminPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.auth.ChangeAdminPassword(r.Context(), req.OldPassword, req.NewPassword); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}
