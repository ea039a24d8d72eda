package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/workpulse/attendance-backend-go/internal/domain/user"
	"github.com/workpulse/attendance-backend-go/internal/handler/http/response"
	usersvc "github.com/workpulse/attendance-backend-go/internal/service/user"
)

type UserHandler struct {
	userService *usersvc.Service
}

func NewUserHandler(userService *usersvc.Service) UserHandler {
	return UserHandler{userService: userService}
}

func (h UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req user.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", nil)
		return
	}

	resp, err := h.userService.Create(r.Context(), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, resp)
}

func (h UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.userService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}

func (h UserHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	filter := user.ListUsersFilter{
		Page:           page,
		Limit:          limit,
		Search:         query.Get("search"),
		IncludeDeleted: query.Get("include_deleted") == "true",
	}
	if teamID := query.Get("team_id"); teamID != "" {
		filter.TeamID = &teamID
	}

	resp, err := h.userService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}

func (h UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req user.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	resp, err := h.userService.Update(r.Context(), &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}

func (h UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req user.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := h.userService.ResetPassword(r.Context(), &req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, map[string]string{"message": "password updated"})
}

func (h UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.userService.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}

func (h UserHandler) Restore(w http.ResponseWriter, r *http.Request) {
	resp, err := h.userService.Restore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}

func (h UserHandler) Purge(w http.ResponseWriter, r *http.Request) {
	resp, err := h.userService.Purge(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, resp)
}

func (h UserHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	resp, err := h.userService.ListTeams(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"items": resp})
}
