package attendance

import "github.com/shopspring/decimal"

type PeriodQuery struct {
	Month int `form:"month"`
	Year  int `form:"year"`
}

type AttendanceResponse struct {
	ID             string           `json:"id"`
	EmployeeID     string           `json:"employee_id"`
	EmployeeName   string           `json:"employee_name,omitempty"`
	LoginID        string           `json:"login_id,omitempty"`
	Department     *string          `json:"department,omitempty"`
	AttendanceDate string           `json:"attendance_date"`
	CheckInTime    *string          `json:"check_in_time"`
	CheckOutTime   *string          `json:"check_out_time"`
	Status         string           `json:"status"`
	TotalHours     *decimal.Decimal `json:"total_hours"`
	Notes          *string          `json:"notes,omitempty"`
}

type TodayStatusResponse struct {
	Date         string           `json:"date"`
	Status       string           `json:"status"`
	LeaveType    string           `json:"leave_type,omitempty"`
	CheckInTime  *string          `json:"check_in_time"`
	CheckOutTime *string          `json:"check_out_time"`
	TotalHours   *decimal.Decimal `json:"total_hours"`
}

type TeamOverviewResponse struct {
	Date           string `json:"date"`
	TotalEmployees int64  `json:"total_employees"`
	Present        int64  `json:"present"`
	OnLeave        int64  `json:"on_leave"`
	Absent         int64  `json:"absent"`
}
