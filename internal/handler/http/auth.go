package http

import (
	"encoding/json"
	"net/http"

	"github.com/workpulse/attendance-backend-go/internal/domain/auth"
	"github.com/workpulse/attendance-backend-go/internal/handler/http/response"
	authsvc "github.com/workpulse/attendance-backend-go/internal/service/auth"
)

type AuthHandler struct {
	authService *authsvc.Service
}

func NewAuthHandler(authService *authsvc.Service) AuthHandler {
	return AuthHandler{authService: authService}
}

func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", nil)
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}

func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authService.Me(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}
