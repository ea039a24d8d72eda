package attendance

import (
	"time"

	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/pkg/clock"
)

// Deriver computes per-day statuses and overtime minutes from raw
// sessions. It holds no state beyond the shift configuration, so the
// derivation is a pure function of its inputs.
type Deriver struct {
	clk                *clock.Clock
	shiftStart         string // HH:MM business time
	shiftEnd           string
	overtimeStart      string
	minOvertimeMinutes int
}

func NewDeriver(clk *clock.Clock, shiftStart, shiftEnd, overtimeStart string, minOvertimeMinutes int) *Deriver {
	return &Deriver{
		clk:                clk,
		shiftStart:         shiftStart,
		shiftEnd:           shiftEnd,
		overtimeStart:      overtimeStart,
		minOvertimeMinutes: minOvertimeMinutes,
	}
}

// DayStatus classifies (user, dateKey) given the session on that date,
// or nil when no status applies yet (future days, today before any
// check-in). now anchors the today/past distinction.
func (d *Deriver) DayStatus(att *attendance.Attendance, dateKey string, isWeekendOrHoliday bool, now time.Time) *attendance.DayStatus {
	if isWeekendOrHoliday {
		return statusPtr(attendance.StatusWeekendOrHoliday)
	}

	today := d.clk.DateKey(now)
	if att == nil {
		if dateKey < today {
			return statusPtr(attendance.StatusAbsent)
		}
		return nil
	}

	if att.CheckOutAt == nil {
		switch {
		case dateKey == today:
			return statusPtr(attendance.StatusWorking)
		case dateKey < today:
			return statusPtr(attendance.StatusMissingCheckout)
		}
		return nil
	}

	late := d.lateMinutes(att)
	early := d.earlyLeaveMinutes(att)
	switch {
	case late > 0 && early > 0:
		return statusPtr(attendance.StatusLateAndEarly)
	case late > 0:
		return statusPtr(attendance.StatusLate)
	case early > 0:
		return statusPtr(attendance.StatusEarlyLeave)
	}
	return statusPtr(attendance.StatusOnTime)
}

func (d *Deriver) lateMinutes(att *attendance.Attendance) int {
	shiftStart, err := d.clk.At(att.Date, d.shiftStart)
	if err != nil {
		return 0
	}
	late := att.CheckInAt.Sub(shiftStart)
	if late <= 0 {
		return 0
	}
	return int(late.Minutes())
}

func (d *Deriver) earlyLeaveMinutes(att *attendance.Attendance) int {
	if att.CheckOutAt == nil {
		return 0
	}
	shiftEnd, err := d.clk.At(att.Date, d.shiftEnd)
	if err != nil {
		return 0
	}
	early := shiftEnd.Sub(*att.CheckOutAt)
	if early <= 0 {
		return 0
	}
	return int(early.Minutes())
}

// OvertimeMinutes accrues from the overtime anchor on the session's
// nominal date through check-out, continuously across midnight. A run
// shorter than the minimum contributes nothing.
func (d *Deriver) OvertimeMinutes(att *attendance.Attendance) int {
	if att == nil || att.CheckOutAt == nil {
		return 0
	}
	anchor, err := d.clk.At(att.Date, d.overtimeStart)
	if err != nil {
		return 0
	}
	minutes := int(att.CheckOutAt.Sub(anchor).Minutes())
	if minutes < d.minOvertimeMinutes {
		return 0
	}
	return minutes
}

func statusPtr(s attendance.DayStatus) *attendance.DayStatus {
	return &s
}
