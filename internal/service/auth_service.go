package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"qualiobra/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService verifies user tokens issued by the hosted auth provider.
// Sign-in itself happens at the provider; this service only checks signatures.
type AuthService struct {
	jwtSecret []byte
	issuer    string
}

// NewAuthService creates a new auth service
func NewAuthService(secret, issuer string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(secret),
		issuer:    issuer,
	}
}

// ValidateUserToken validates a user JWT and returns its claims
func (s *AuthService) ValidateUserToken(tokenString string) (*model.UserClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// IssueUserToken signs a token the way the auth provider does. Used by the
// seed CLI for local runs and by tests.
func (s *AuthService) IssueUserToken(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &model.UserClaims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
