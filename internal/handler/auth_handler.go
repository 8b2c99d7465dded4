package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rupayx/wallet-service/internal/infrastructure/auth"
	"github.com/rupayx/wallet-service/internal/models"
)

type userResponse struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	Balance      string `json:"balance"`
	IsBanned     bool   `json:"isBanned"`
	JoinedDate   string `json:"joinedDate"`
	ReferralCode string `json:"referralCode"`
	ReferredBy   string `json:"referredBy,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		UID:          u.UID,
		Email:        u.Email,
		Balance:      u.Balance.String(),
		IsBanned:     u.IsBanned,
		JoinedDate:   u.JoinedDate.Format("2006-01-02T15:04:05Z07:00"),
		ReferralCode: u.ReferralCode,
		ReferredBy:   u.ReferredBy,
	}
}

func (h *Handler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	delivery, err := h.auth.SendCode(r.Context(), req.Email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := map[string]interface{}{"delivered": delivery.Delivered}
	if !delivery.Delivered {
		// Delivery failure is non-fatal: surface the code in-app.
		resp["code"] = delivery.Code
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) VerifyRegistration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		Code       string `json:"code"`
		ReferredBy string `json:"referredBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	token, user, err := h.auth.VerifyRegistration(r.Context(), req.Email, req.Password, req.Code, req.ReferredBy)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  toUserResponse(user),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  toUserResponse(user),
	})
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := h.auth.AdminLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, errors.New("user not authenticated"))
		return
	}

	user, err := h.auth.Profile(r.Context(), email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toUserResponse(user))
}
