package middleware

import (
	"strings"

	"github.com/amirasaad/ledger/pkg/service/auth"
	"github.com/amirasaad/ledger/webapi/common"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenKey    = "user"
	identityKey = "identity"
)

// JwtProtected guards a route with a bearer token signed by authSvc.
// A request without an Authorization header gets 401; any other token
// failure gets 403. On success the caller's auth.Identity is stored in
// locals, see CurrentIdentity.
func JwtProtected(authSvc *auth.Service) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc:        authSvc.KeyFunc,
		Claims:         &auth.Claims{},
		ContextKey:     tokenKey,
		SuccessHandler: storeIdentity,
		ErrorHandler:   jwtError,
	})
}

func storeIdentity(c *fiber.Ctx) error {
	token, _ := c.Locals(tokenKey).(*jwt.Token)
	identity, err := auth.IdentityFromToken(token)
	if err != nil {
		return jwtError(c, err)
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == "" {
		return common.ProblemDetailsJSON(c, "Unauthorized", auth.ErrMissingToken, "Missing bearer token", fiber.StatusUnauthorized)
	}
	return common.ProblemDetailsJSON(c, "Forbidden", err, "Invalid or expired token", fiber.StatusForbidden)
}

// CurrentIdentity returns the identity stored by JwtProtected.
func CurrentIdentity(c *fiber.Ctx) (auth.Identity, bool) {
	identity, ok := c.Locals(identityKey).(auth.Identity)
	return identity, ok
}
