package auth

import (
	"fmt"
	"strings"
)

// TokenExtractor resolves an acting user's ID from an Authorization header.
// Tokens are opaque bearer credentials issued by the external identity
// collaborator; their lifecycle (issue, refresh, revoke) is not handled here.
type TokenExtractor struct{}

// NewTokenExtractor creates a new TokenExtractor.
func NewTokenExtractor() *TokenExtractor {
	return &TokenExtractor{}
}

// ExtractActorIDFromHeader parses "Bearer <token>" and returns the user ID
// the token encodes.
func (te *TokenExtractor) ExtractActorIDFromHeader(authHeader string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("authorization header is not a bearer token")
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", fmt.Errorf("bearer token is empty")
	}

	return token, nil
}
