package models

// Role values issued by the remote API.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DefaultInitialCapital is the starting capital the remote API assigns to new users.
const DefaultInitialCapital = 1000.0

type User struct {
	ID             int64    `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Role           string   `json:"role"`
	Valid          bool     `json:"valid"`
	InitialCapital *float64 `json:"initial_capital"`
}

// UserCreate is the admin payload for registering a user.
type UserCreate struct {
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Role           string  `json:"role"`
	InitialCapital float64 `json:"initial_capital"`
}

// UserUpdate is used both by admins and by users editing their own profile.
type UserUpdate struct {
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Role           string   `json:"role,omitempty"`
	InitialCapital *float64 `json:"initial_capital,omitempty"`
}

// PasswordChange is the self-service password change payload.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
