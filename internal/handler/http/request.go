package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/workpulse/attendance-backend-go/internal/domain/request"
	"github.com/workpulse/attendance-backend-go/internal/handler/http/response"
	requestsvc "github.com/workpulse/attendance-backend-go/internal/service/request"
)

type RequestHandler struct {
	requestService *requestsvc.Service
}

func NewRequestHandler(requestService *requestsvc.Service) RequestHandler {
	return RequestHandler{requestService: requestService}
}

func (h RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", nil)
		return
	}

	resp, err := h.requestService.Create(r.Context(), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, resp)
}

func (h RequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	resp, err := h.requestService.ListMine(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"items": resp})
}

func (h RequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	resp, err := h.requestService.ListPending(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"items": resp})
}

func (h RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	resp, err := h.requestService.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}

func (h RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	resp, err := h.requestService.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}
