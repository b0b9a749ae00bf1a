package upstream

import (
	"context"
	"net/url"

	"github.com/worldofdc/portal-gateway/internal/models"
)

// CreateMeeting schedules a meeting with the invited participants.
func (c *Client) CreateMeeting(ctx context.Context, req models.MeetingCreateRequest) (*models.Meeting, error) {
	meeting, err := doJSON[models.Meeting](ctx, c, "meeting_create", "POST", "/meetings/create", req)
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// MyMeetings lists meetings the current user organizes or attends.
func (c *Client) MyMeetings(ctx context.Context) ([]models.Meeting, error) {
	return doJSON[[]models.Meeting](ctx, c, "meeting_my", "GET", "/meetings/my-meetings", nil)
}

// UpcomingMeetings lists future meetings for the current user.
func (c *Client) UpcomingMeetings(ctx context.Context) ([]models.Meeting, error) {
	return doJSON[[]models.Meeting](ctx, c, "meeting_upcoming", "GET", "/meetings/upcoming", nil)
}

// AllMeetings lists every meeting visible to the current user.
func (c *Client) AllMeetings(ctx context.Context) ([]models.Meeting, error) {
	return doJSON[[]models.Meeting](ctx, c, "meeting_all", "GET", "/meetings/all", nil)
}

// MeetingByID fetches one meeting.
func (c *Client) MeetingByID(ctx context.Context, id string) (*models.Meeting, error) {
	meeting, err := doJSON[models.Meeting](ctx, c, "meeting_by_id", "GET", "/meetings/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}
