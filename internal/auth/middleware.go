package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware extracts the acting user's ID from the Authorization header and
// injects it into the request context.
//
// If no valid token is present the request proceeds without an actor;
// handlers for public endpoints tolerate that, protected ones use
// RequireAuth. This keeps public, protected and optional-auth endpoints on
// the same chain.
func Middleware(tokenExtractor *TokenExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			slog.Debug("no authorization header provided")
			c.Next()
			return
		}

		actorID, err := tokenExtractor.ExtractActorIDFromHeader(authHeader)
		if err != nil {
			slog.Warn("failed to extract actor ID from token",
				"error", err,
				"auth_header_length", len(authHeader),
			)
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(WithActorID(c.Request.Context(), actorID))
		c.Next()
	}
}

// RequireAuth aborts with 401 when the request carries no actor. Apply after
// Middleware on protected endpoints.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorID(c.Request.Context()) == "" {
			slog.Warn("authentication required but not provided",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authentication required",
			})
			return
		}
		c.Next()
	}
}
