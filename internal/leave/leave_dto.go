package leave

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required,oneof=Paid Sick Unpaid"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

type RejectLeaveRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
}

type LeaveFilter struct {
	Status     string `form:"status" binding:"omitempty,oneof=Pending Approved Rejected"`
	Year       int    `form:"year"`
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	LoginID         string  `json:"login_id,omitempty"`
	Department      *string `json:"department,omitempty"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Days            int     `json:"days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApproverName    string  `json:"approver_name,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type BalanceDetail struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

type BalanceResponse struct {
	EmployeeID string        `json:"employee_id"`
	Year       int           `json:"year"`
	Paid       BalanceDetail `json:"paid"`
	Sick       BalanceDetail `json:"sick"`
}

type CalendarEntry struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Department   *string `json:"department,omitempty"`
	LeaveType    string  `json:"leave_type"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
}

type TeamSummaryResponse struct {
	OnLeaveToday      int64 `json:"on_leave_today"`
	PendingRequests   int64 `json:"pending_requests"`
	ApprovedThisMonth int64 `json:"approved_this_month"`
}
