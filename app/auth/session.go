package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookie is the name of the session cookie.
	SessionCookie = "session"

	sessionTTL = 7 * 24 * time.Hour
)

type sessionClaims struct {
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
	jwt.RegisteredClaims
}

// IssueSession creates a signed session token for the given identity
func IssueSession(secret, username, profileImageURL string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Username:        username,
		ProfileImageURL: profileImageURL,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// ParseSession validates a session token and returns the identity it carries
func ParseSession(secret, tokenString string) (*User, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("session token has no username")
	}

	return &User{
		Authenticated:   true,
		Username:        claims.Username,
		ProfileImageURL: claims.ProfileImageURL,
	}, nil
}
