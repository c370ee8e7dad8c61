package middleware

import (
	"strings"

	"github.com/complaintdesk/backend/internal/models"
	"github.com/complaintdesk/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const actorIDKey = "actor_id"

type ActorMiddleware struct {
	jwtManager *utils.JWTManager
}

func NewActorMiddleware(jwtManager *utils.JWTManager) *ActorMiddleware {
	return &ActorMiddleware{jwtManager: jwtManager}
}

// Resolve records the acting user for the request. Requests without an
// Authorization header act as the system actor; a header that does not carry
// a valid bearer token is rejected.
func (m *ActorMiddleware) Resolve() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			c.Locals(actorIDKey, models.SystemActorID)
			return c.Next()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Malformed authorization header")
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(actorIDKey, claims.ActorID)
		return c.Next()
	}
}

// ActorID returns the actor resolved for the request, falling back to the
// system actor when the middleware did not run.
func ActorID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(actorIDKey).(uint); ok && id != 0 {
		return id
	}
	return models.SystemActorID
}
