package models

import "time"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an investor profile. Credentials live with the identity provider.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name,omitempty"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RiskAppetite RiskLevel `json:"risk_appetite"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch is a partial profile update; nil fields are left unchanged.
type UserPatch struct {
	FirstName    *string
	LastName     *string
	RiskAppetite *RiskLevel
}
