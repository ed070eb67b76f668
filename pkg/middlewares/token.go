package middlewares

import (
	errprocess "community_chat_service/pkg/err"
	"community_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "auth_token"

	//TokenMemberID get member form token, set c.locals name
	TokenMemberID = "MemberID"
	//TokenRole get role form token, set c.locals name
	TokenRole = "role"
	//TokenUsername get username form token, set c.locals name
	TokenUsername = "username"
)

// JWTMiddleware validates JWT from the Authorization header, auth query or auth_token cookie
func JWTMiddleware(parser token.Parser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := token.ExtractBearer(c.Get(fiber.HeaderAuthorization))

		if tokenStr == "" {
			tokenStr = c.Query(QueryToken)
		}
		if tokenStr == "" {
			tokenStr = c.Cookies(CookieToken)
		}

		if tokenStr == "" {
			return deny(c, errprocess.Auth("No token, authorization denied"))
		}

		claims, err := parser.ParseJWT(tokenStr)
		if err != nil {
			return deny(c, errprocess.Auth("Token is not valid"))
		}

		c.Locals(TokenMemberID, claims.MemberID)
		c.Locals(TokenRole, claims.Role)
		c.Locals(TokenUsername, claims.Username)

		return c.Next()
	}
}

func deny(c *fiber.Ctx, err error) error {
	return c.Status(errprocess.HTTPStatus(err)).JSON(fiber.Map{
		"message": errprocess.PublicMessage(err, "Unauthorized"),
	})
}

// MemberID read the authenticated member id from locals
func MemberID(c *fiber.Ctx) string {
	id, _ := c.Locals(TokenMemberID).(string)
	return id
}
