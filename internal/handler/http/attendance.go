package http

import (
	"net/http"

	"github.com/workpulse/attendance-backend-go/internal/handler/http/response"
	attendancesvc "github.com/workpulse/attendance-backend-go/internal/service/attendance"
)

type AttendanceHandler struct {
	attendanceService *attendancesvc.Service
}

func NewAttendanceHandler(attendanceService *attendancesvc.Service) AttendanceHandler {
	return AttendanceHandler{attendanceService: attendanceService}
}

func (h AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	resp, err := h.attendanceService.CheckIn(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}

func (h AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	resp, err := h.attendanceService.CheckOut(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}

func (h AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var teamID *string
	if v := query.Get("team_id"); v != "" {
		teamID = &v
	}

	resp, err := h.attendanceService.Today(r.Context(), attendancesvc.Scope(query.Get("scope")), teamID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}

func (h AttendanceHandler) MonthlyMe(w http.ResponseWriter, r *http.Request) {
	resp, err := h.attendanceService.MonthlyMe(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}
