package service

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/theapemachine/a2a-calculator/pkg/auth"
)

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (jwt.MapClaims, error)
}

/*
NewAuthMiddleware stores the caller's bearer token in the request context so
the agent can forward it to the tool server. With a verifier the token is
also required and must verify, otherwise the request ends with 401.
*/
func NewAuthMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := auth.BearerToken(c.Get(fiber.HeaderAuthorization))

		if verifier == nil {
			if ok {
				c.SetContext(auth.WithToken(c.Context(), token))
			}

			return c.Next()
		}

		if !ok {
			return unauthorized(c, "Missing bearer token")
		}

		claims, err := verifier.Verify(c.Context(), token)

		if err != nil {
			log.Warn("rejected bearer token", "error", err)
			return unauthorized(c, "Invalid token: "+err.Error())
		}

		log.Debug("verified bearer token", "sub", claims["sub"])
		c.SetContext(auth.WithToken(c.Context(), token))

		return c.Next()
	}
}

func unauthorized(c fiber.Ctx, detail string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": detail})
}
