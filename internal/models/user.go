package models

// User is the portal profile record held by the client session.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	EmployeeID   string `json:"employeeId,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// UserUpdate carries a partial profile update. Nil fields are left
// untouched; role and token are never updatable through this path.
type UserUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Apply merges the update into a copy of the user.
func (u UserUpdate) Apply(user User) User {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	return user
}

// LoginCredentials is the generic credential-based login payload.
type LoginCredentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is what a successful credential login returns.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
