package domain

import "time"

// Provider tags how an account authenticates. Accounts provisioned through a
// federated login carry a random placeholder PasswordHash that is never
// disclosed, so the password flow fails for them like any wrong password.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

const (
	DefaultFederatedLocation = "Remote"
	DefaultFederatedPlant    = "Global"
)

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Location     string    `json:"location"`
	Plant        string    `json:"plant"`
	Provider     Provider  `json:"provider"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserProfile is the public projection of a User.
type UserProfile struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Location string `json:"location"`
	Plant    string `json:"plant"`
}

// Profile returns the public projection of u.
func (u *User) Profile() UserProfile {
	return UserProfile{
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		Location: u.Location,
		Plant:    u.Plant,
	}
}
