package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token attached to every upstream request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a fixed token, typically loaded from configuration.
type StaticTokenSource string

// Token implements TokenSource.
func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", errors.New("upstream: empty token")
	}
	return string(s), nil
}

// UserIDFromToken recovers the user identifier by decoding the bearer token
// locally. The signature is not verified: the token was issued by the same
// backend the client talks to, and this path only runs as a fallback when no
// identity is otherwise in memory.
func UserIDFromToken(raw string) (string, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return "", errors.New("upstream: empty token")
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return "", fmt.Errorf("upstream: decode token: %w", err)
	}
	for _, key := range []string{"user_id", "uid", "sub"} {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case float64:
			return fmt.Sprintf("%.0f", v), nil
		}
	}
	return "", errors.New("upstream: token carries no user identity")
}
