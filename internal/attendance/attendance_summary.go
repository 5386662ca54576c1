package attendance

import (
	"time"

	attendanceerrors "dayflow-hris/internal/attendance/errors"

	"github.com/shopspring/decimal"
)

const (
	minYear = 1900
	maxYear = 9999
)

// Summary is the day-count view of one employee's month.
type Summary struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	WorkingDays     int             `json:"working_days"`
	PresentDays     int             `json:"present_days"`
	PaidLeaveDays   int             `json:"paid_leave_days"`
	SickLeaveDays   int             `json:"sick_leave_days"`
	UnpaidLeaveDays int             `json:"unpaid_leave_days"`
	AbsentDays      int             `json:"absent_days"`
	PayableDays     int             `json:"payable_days"`
	TotalHours      decimal.Decimal `json:"total_hours"`

	// Reconciled is false when present, leave and absent days do not add up
	// to the working days. Leave spanning weekends is the usual cause.
	Reconciled bool `json:"reconciled"`
}

// MonthBounds returns the first and last calendar day of the month in UTC.
func MonthBounds(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 || year < minYear || year > maxYear {
		return time.Time{}, time.Time{}, attendanceerrors.ErrInvalidPeriod
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}

// WorkingDays counts Monday to Friday in the month. Holidays are not modeled.
func WorkingDays(year, month int) (int, error) {
	start, end, err := MonthBounds(year, month)
	if err != nil {
		return 0, err
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count, nil
}

// Summarize reduces a month of attendance rows and approved leave into day
// counts. Rows and leaves outside the month are ignored, and leave is counted
// by its overlap with the month in calendar days.
func Summarize(year, month int, records []Attendance, leaves []ApprovedLeave) (Summary, error) {
	start, end, err := MonthBounds(year, month)
	if err != nil {
		return Summary{}, err
	}
	working, err := WorkingDays(year, month)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Year:        year,
		Month:       month,
		WorkingDays: working,
		TotalHours:  decimal.Zero,
	}

	for _, r := range records {
		d := dateOnly(r.AttendanceDate)
		if d.Before(start) || d.After(end) {
			continue
		}
		if r.Status == StatusPresent {
			s.PresentDays++
		}
		if r.TotalHours.Valid {
			s.TotalHours = s.TotalHours.Add(r.TotalHours.Decimal)
		}
	}

	for _, l := range leaves {
		days := overlapDays(dateOnly(l.StartDate), dateOnly(l.EndDate), start, end)
		switch l.LeaveType {
		case LeaveTypePaid:
			s.PaidLeaveDays += days
		case LeaveTypeSick:
			s.SickLeaveDays += days
		case LeaveTypeUnpaid:
			s.UnpaidLeaveDays += days
		}
	}

	s.PayableDays = s.PresentDays + s.PaidLeaveDays + s.SickLeaveDays

	accounted := s.PresentDays + s.PaidLeaveDays + s.UnpaidLeaveDays + s.SickLeaveDays
	s.AbsentDays = max(0, working-accounted)
	s.Reconciled = accounted+s.AbsentDays == working
	s.TotalHours = s.TotalHours.Round(2)

	return s, nil
}

// overlapDays is min(end, windowEnd) - max(start, windowStart) + 1, never
// below zero.
func overlapDays(start, end, windowStart, windowEnd time.Time) int {
	from := start
	if windowStart.After(from) {
		from = windowStart
	}
	to := end
	if windowEnd.Before(to) {
		to = windowEnd
	}
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
