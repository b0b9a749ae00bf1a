package models

// Meeting is a scheduled meeting between officers.
type Meeting struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ScheduledAt  string   `json:"scheduledAt"`
	Location     string   `json:"location"`
	OrganizerID  string   `json:"organizerId"`
	Participants []string `json:"participants"`
	Status       string   `json:"status"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

// MeetingCreateRequest schedules a meeting with invited participants.
type MeetingCreateRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	ScheduledAt  string   `json:"scheduledAt" binding:"required"`
	Location     string   `json:"location"`
	Participants []string `json:"participants" binding:"required,min=1"`
}
