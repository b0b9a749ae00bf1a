package models

// SendOTPRequest asks the backend to send a one-time passcode. The same
// path serves fresh registrations and returning citizens; the response
// never reveals whether the number is already registered.
type SendOTPRequest struct {
	MobileNumber string `json:"mobileNumber" binding:"required,len=10,numeric"`
}

// VerifyOTPRequest exchanges a passcode for a bearer token.
type VerifyOTPRequest struct {
	MobileNumber string `json:"mobileNumber" binding:"required,len=10,numeric"`
	OTP          string `json:"otp" binding:"required,min=4"`
}

// CitizenRegistration completes a citizen profile after OTP verification.
type CitizenRegistration struct {
	MobileNumber string `json:"mobileNumber" binding:"required,len=10,numeric"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email,omitempty" binding:"omitempty,email"`
	Address      string `json:"address,omitempty"`
	AadharNumber string `json:"aadharNumber,omitempty" binding:"omitempty,len=12,numeric"`
}

// TokenPayload is the data half of a verify-otp or officer-login response.
type TokenPayload struct {
	Token     string `json:"token"`
	OfficerID string `json:"officerId,omitempty"`
}
