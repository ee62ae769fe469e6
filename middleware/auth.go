package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	localActor     = "actor"
	AnonymousActor = "anonymous"
)

// ActorMiddleware records who is making the request for audit fields.
// It never rejects a request: a missing or invalid token yields the
// anonymous actor.
func ActorMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localActor, actorFromHeader(c.Get("Authorization"), secret))
		return c.Next()
	}
}

// Actor returns the actor stored by ActorMiddleware.
func Actor(c *fiber.Ctx) string {
	if actor, ok := c.Locals(localActor).(string); ok && actor != "" {
		return actor
	}
	return AnonymousActor
}

func actorFromHeader(header, secret string) string {
	tokenParts := strings.Split(header, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		return AnonymousActor
	}

	token, err := jwt.Parse(tokenParts[1], func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil || !token.Valid {
		return AnonymousActor
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AnonymousActor
	}
	for _, key := range []string{"username", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return AnonymousActor
}
