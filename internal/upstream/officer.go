package upstream

import (
	"context"
	"net/url"

	"github.com/worldofdc/portal-gateway/internal/models"
)

// officerRecord tolerates the backend's serializer emitting boolean flags
// as `active`/`approved` instead of `isActive`/`isApproved`. Normalization
// happens here so the rest of the client only ever sees the latter.
type officerRecord struct {
	models.Officer
	Active   *bool `json:"active"`
	Approved *bool `json:"approved"`
}

func (r officerRecord) normalized() models.Officer {
	o := r.Officer
	if r.Active != nil {
		o.IsActive = *r.Active
	}
	if r.Approved != nil {
		o.IsApproved = *r.Approved
	}
	return o
}

func normalizeOfficers(records []officerRecord) []models.Officer {
	officers := make([]models.Officer, 0, len(records))
	for _, r := range records {
		officers = append(officers, r.normalized())
	}
	return officers
}

// SignupOfficer registers a new officer account, created unapproved.
func (c *Client) SignupOfficer(ctx context.Context, req models.OfficerSignupRequest) (string, error) {
	payload, err := doJSON[models.TokenPayload](ctx, c, "officer_signup", "POST", "/officer/signup", req)
	if err != nil {
		return "", err
	}
	return payload.OfficerID, nil
}

// OfficerLogin authenticates an approved officer by employee id + password.
func (c *Client) OfficerLogin(ctx context.Context, req models.OfficerLoginRequest) (*models.TokenPayload, error) {
	payload, err := doJSON[models.TokenPayload](ctx, c, "officer_login", "POST", "/officer/login", req)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// PendingOfficers lists registrations awaiting admin approval.
func (c *Client) PendingOfficers(ctx context.Context) ([]models.Officer, error) {
	data, err := doJSON[struct {
		Officers []officerRecord `json:"officers"`
	}](ctx, c, "officer_pending", "GET", "/officer/pending", nil)
	if err != nil {
		return nil, err
	}
	return normalizeOfficers(data.Officers), nil
}

// ApproveOfficer approves a pending registration and assigns its role.
func (c *Client) ApproveOfficer(ctx context.Context, officerID string, req models.OfficerApprovalRequest) error {
	return doAck(ctx, c, "officer_approve", "POST", "/officer/approve/"+url.PathEscape(officerID), req)
}

// RejectOfficer rejects a pending registration.
func (c *Client) RejectOfficer(ctx context.Context, officerID string, req models.OfficerRejectionRequest) error {
	return doAck(ctx, c, "officer_reject", "POST", "/officer/reject/"+url.PathEscape(officerID), req)
}

// ListOfficers searches the officer directory. An empty query lists all.
func (c *Client) ListOfficers(ctx context.Context, search string) ([]models.Officer, error) {
	path := "/officer/list"
	if search != "" {
		path += "?" + url.Values{"search": {search}}.Encode()
	}
	records, err := doJSON[[]officerRecord](ctx, c, "officer_list", "GET", path, nil)
	if err != nil {
		return nil, err
	}
	return normalizeOfficers(records), nil
}
