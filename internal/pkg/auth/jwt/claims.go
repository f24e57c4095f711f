package jwt

import "github.com/golang-jwt/jwt"

// UserType values carried in Payload.UserType.
const (
	UserTypeGuest      = "guest"
	UserTypeRegistered = "registered"
)

// Payload is the claim set of an identity token issued by the tracker backend.
type Payload struct {
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the tracker user id: a guest id or a registered user's UUID.
	ID string `json:"id"`

	// Username is the registered username, empty for guests.
	Username string `json:"username,omitempty"`

	UserType string `json:"user_type"`
}
