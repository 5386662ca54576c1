package employee

type ListEmployeesFilter struct {
	Department string `form:"department"`
	ActiveOnly bool   `form:"active_only"`
}

type EmployeeResponse struct {
	ID          string  `json:"id"`
	LoginID     string  `json:"login_id"`
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	Department  *string `json:"department,omitempty"`
	Role        string  `json:"role"`
	JoiningDate string  `json:"joining_date"`
	IsActive    bool    `json:"is_active"`
}

type EmployeeOption struct {
	ID       string `json:"id"`
	LoginID  string `json:"login_id"`
	FullName string `json:"full_name"`
}
