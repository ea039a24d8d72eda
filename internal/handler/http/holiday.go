package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/workpulse/attendance-backend-go/internal/domain/holiday"
	"github.com/workpulse/attendance-backend-go/internal/handler/http/response"
	holidaysvc "github.com/workpulse/attendance-backend-go/internal/service/holiday"
)

type HolidayHandler struct {
	holidayService *holidaysvc.Service
}

func NewHolidayHandler(holidayService *holidaysvc.Service) HolidayHandler {
	return HolidayHandler{holidayService: holidayService}
}

func (h HolidayHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.holidayService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"items": resp})
}

func (h HolidayHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req holiday.CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", nil)
		return
	}

	resp, err := h.holidayService.Create(r.Context(), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, resp)
}

func (h HolidayHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.holidayService.Delete(r.Context(), chi.URLParam(r, "date")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, map[string]string{"message": "holiday removed"})
}
