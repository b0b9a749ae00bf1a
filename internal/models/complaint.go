package models

// Complaint categories, statuses and priorities as the backend defines them.
type (
	ComplaintCategory string
	ComplaintStatus   string
	ComplaintPriority string
)

const (
	CategoryInfrastructure ComplaintCategory = "INFRASTRUCTURE"
	CategoryPublicServices ComplaintCategory = "PUBLIC_SERVICES"
	CategoryEnvironment    ComplaintCategory = "ENVIRONMENT"
	CategorySafety         ComplaintCategory = "SAFETY"
	CategoryTransportation ComplaintCategory = "TRANSPORTATION"
	CategoryUtilities      ComplaintCategory = "UTILITIES"
	CategoryGeneral        ComplaintCategory = "GENERAL"

	StatusOpen       ComplaintStatus = "OPEN"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusResolved   ComplaintStatus = "RESOLVED"
	StatusClosed     ComplaintStatus = "CLOSED"

	PriorityLow    ComplaintPriority = "LOW"
	PriorityMedium ComplaintPriority = "MEDIUM"
	PriorityHigh   ComplaintPriority = "HIGH"
	PriorityUrgent ComplaintPriority = "URGENT"
)

// Complaint is a filed grievance.
type Complaint struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    ComplaintCategory `json:"category"`
	Status      ComplaintStatus   `json:"status"`
	Priority    ComplaintPriority `json:"priority"`
	AssignedTo  string            `json:"assignedTo,omitempty"`
	CreatedBy   string            `json:"createdBy"`
	Attachments []string          `json:"attachments,omitempty"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

// ComplaintCreateRequest files a new grievance.
type ComplaintCreateRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description" binding:"required"`
	Category    ComplaintCategory `json:"category" binding:"required"`
	Priority    ComplaintPriority `json:"priority" binding:"required"`
}

// ComplaintUpdateRequest updates an existing grievance. Officers use it to
// reassign and progress status; nil fields are left untouched.
type ComplaintUpdateRequest struct {
	Title       *string            `json:"title,omitempty"`
	Description *string            `json:"description,omitempty"`
	Category    *ComplaintCategory `json:"category,omitempty"`
	Status      *ComplaintStatus   `json:"status,omitempty"`
	Priority    *ComplaintPriority `json:"priority,omitempty"`
	AssignedTo  *string            `json:"assignedTo,omitempty"`
}
