package attendance

import "time"

type AttendanceResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Date       string  `json:"date"`
	CheckInAt  string  `json:"check_in_at"`
	CheckOutAt *string `json:"check_out_at,omitempty"`
	OTApproved bool    `json:"ot_approved"`
}

func ToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		Date:       a.Date,
		CheckInAt:  a.CheckInAt.Format(time.RFC3339),
		OTApproved: a.OTApproved,
	}
	if a.CheckOutAt != nil {
		out := a.CheckOutAt.Format(time.RFC3339)
		resp.CheckOutAt = &out
	}
	return resp
}

// TodayItem is one row of the today view: the user plus their session
// and derived status, if any.
type TodayItem struct {
	UserID       string              `json:"user_id"`
	Name         string              `json:"name"`
	EmployeeCode string              `json:"employee_code"`
	TeamID       *string             `json:"team_id,omitempty"`
	Status       *DayStatus          `json:"status,omitempty"`
	Attendance   *AttendanceResponse `json:"attendance,omitempty"`
}

type TodayResponse struct {
	Date  string      `json:"date"`
	Items []TodayItem `json:"items"`
}

// DayRecord is one calendar day of the monthly view. Status is absent
// for future days and for today before any check-in.
type DayRecord struct {
	Date            string              `json:"date"`
	Status          *DayStatus          `json:"status,omitempty"`
	OvertimeMinutes int                 `json:"overtime_minutes"`
	Attendance      *AttendanceResponse `json:"attendance,omitempty"`
}

type MonthlyResponse struct {
	Month string      `json:"month"`
	Items []DayRecord `json:"items"`
}
