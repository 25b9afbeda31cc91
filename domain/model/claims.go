package model

import "github.com/golang-jwt/jwt"

// UserClaims are the claims of a user access token issued by the auth provider.
// The user id travels in the standard "sub" claim.
type UserClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.StandardClaims
}
