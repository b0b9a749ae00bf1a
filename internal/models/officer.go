package models

// Officer is a government-staff account, subject to admin approval
// before login succeeds.
type Officer struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employeeId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	Designation  string `json:"designation"`
	Department   string `json:"department"`
	Role         Role   `json:"role"`
	IsActive     bool   `json:"isActive"`
	IsApproved   bool   `json:"isApproved"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// OfficerSignupRequest registers a new officer (created unapproved).
type OfficerSignupRequest struct {
	EmployeeID   string `json:"employeeId" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	MobileNumber string `json:"mobileNumber" binding:"required,len=10,numeric"`
	Designation  string `json:"designation" binding:"required"`
	Department   string `json:"department" binding:"required"`
	Role         string `json:"role" binding:"required"`
	Password     string `json:"password" binding:"required,min=8"`
}

// OfficerLoginRequest authenticates an approved officer.
type OfficerLoginRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// OfficerApprovalRequest approves a pending officer and assigns a role.
type OfficerApprovalRequest struct {
	ApproverEmployeeID string `json:"approverEmployeeId" binding:"required"`
	Role               string `json:"role" binding:"required"`
}

// OfficerRejectionRequest rejects a pending officer registration.
type OfficerRejectionRequest struct {
	ApproverEmployeeID string `json:"approverEmployeeId" binding:"required"`
}
