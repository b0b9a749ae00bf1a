package upstream

import (
	"context"

	"github.com/worldofdc/portal-gateway/internal/models"
)

// SendOTP asks the backend to deliver a passcode to the mobile number.
// The backend sends to any number without revealing whether it is
// registered; the client treats the flow identically for login and signup.
func (c *Client) SendOTP(ctx context.Context, mobileNumber string) error {
	return doAck(ctx, c, "citizen_send_otp", "POST", "/citizen/send-otp", models.SendOTPRequest{
		MobileNumber: mobileNumber,
	})
}

// VerifyOTP exchanges the passcode for a bearer token.
func (c *Client) VerifyOTP(ctx context.Context, mobileNumber, otp string) (*models.TokenPayload, error) {
	payload, err := doJSON[models.TokenPayload](ctx, c, "citizen_verify_otp", "POST", "/citizen/verify-otp", models.VerifyOTPRequest{
		MobileNumber: mobileNumber,
		OTP:          otp,
	})
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// RegisterCitizen completes a citizen profile after OTP verification.
func (c *Client) RegisterCitizen(ctx context.Context, reg models.CitizenRegistration) error {
	return doAck(ctx, c, "citizen_register", "POST", "/citizen/register", reg)
}
