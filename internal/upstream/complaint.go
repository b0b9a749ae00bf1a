package upstream

import (
	"context"
	"net/url"

	"github.com/worldofdc/portal-gateway/internal/models"
)

// ListComplaints lists grievances visible to the current user: their own
// for citizens, assigned/department ones for officers. Filtering is the
// backend's call based on the bearer token.
func (c *Client) ListComplaints(ctx context.Context) ([]models.Complaint, error) {
	return doJSON[[]models.Complaint](ctx, c, "complaint_list", "GET", "/complaints", nil)
}

// ComplaintByID fetches one grievance.
func (c *Client) ComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	complaint, err := doJSON[models.Complaint](ctx, c, "complaint_by_id", "GET", "/complaints/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// CreateComplaint files a new grievance.
func (c *Client) CreateComplaint(ctx context.Context, req models.ComplaintCreateRequest) (*models.Complaint, error) {
	complaint, err := doJSON[models.Complaint](ctx, c, "complaint_create", "POST", "/complaints", req)
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// UpdateComplaint applies a partial update to a grievance.
func (c *Client) UpdateComplaint(ctx context.Context, id string, req models.ComplaintUpdateRequest) (*models.Complaint, error) {
	complaint, err := doJSON[models.Complaint](ctx, c, "complaint_update", "PUT", "/complaints/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}
