package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims issued by the hosted auth provider.
// Subject carries the user id.
type UserClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
