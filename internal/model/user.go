package model

import (
	"errors"
	"time"
)

// User represents a registered account
type User struct {
	ID                int64      `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Email             string     `db:"email" json:"-"`
	Username          string     `db:"username" json:"username"`
	PasswordHashed    string     `db:"password_hashed" json:"-"` // "-" hides from JSON output
	AvatarURL         *string    `db:"avatar_url" json:"avatar_url"`
	AvatarKey         *string    `db:"avatar_key" json:"-"`
	Bio               *string    `db:"bio" json:"bio"`
	FollowerCount     int        `db:"follower_count" json:"followers_count"`
	FollowingCount    int        `db:"following_count" json:"following_count"`
	UsernameChangedAt *time.Time `db:"username_changed_at" json:"username_changed_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// UserSummary is the compact user shape embedded in artworks, comments and
// notifications.
type UserSummary struct {
	ID        int64   `db:"id" json:"id"`
	Username  string  `db:"username" json:"username"`
	Name      string  `db:"name" json:"name"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned from register and login.
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// ProfileResponse is the public profile view with relationship flags.
type ProfileResponse struct {
	User        *User     `json:"user"`
	IsMe        bool      `json:"is_me"`
	IsFollowing bool      `json:"is_following"`
	Artworks    []Artwork `json:"artworks"`
}

// UpdateProfileRequest carries optional profile field updates. Avatar
// fields are filled in by the handler after a successful upload, not
// taken from the client body.
type UpdateProfileRequest struct {
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"-"`
	AvatarKey *string `json:"-"`
}

// ChangeUsernameRequest is the request body for PATCH /settings/username.
type ChangeUsernameRequest struct {
	Username string `json:"username"`
}

// ChangePasswordRequest is the request body for PATCH /settings/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// DeleteAccountRequest is the request body for DELETE /settings/account.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// User constraints
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
	MaxBioLength      = 150
	// UsernameCooldown is how long a user must wait between username changes.
	UsernameCooldown = 14 * 24 * time.Hour
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when attempting to register with a taken email
	ErrEmailExists = errors.New("email already registered")

	// ErrUsernameTaken is returned when the requested username belongs to another user
	ErrUsernameTaken = errors.New("username already taken")

	// ErrUsernameTooShort is returned when a username fails the minimum length check
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")

	// ErrUsernameCooldown is returned when the username was changed too recently
	ErrUsernameCooldown = errors.New("username changed too recently")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNameRequired is returned when registering without a display name
	ErrNameRequired = errors.New("name is required")

	// ErrEmailInvalid is returned when registering with a malformed email
	ErrEmailInvalid = errors.New("a valid email is required")

	// ErrPasswordTooShort is returned when a password fails the minimum length check
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ErrBioTooLong is returned when a bio exceeds the maximum length
	ErrBioTooLong = errors.New("bio too long")

	// ErrSamePassword is returned when the new password equals the current one
	ErrSamePassword = errors.New("new password must be different")
)
