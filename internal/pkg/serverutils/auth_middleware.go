package serverutils

import (
	"strings"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/pkg/apperror"
	"pdfchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalsUser   = "user"
	LocalsUserID = "user_id"
)

// AuthMiddleware resolves the bearer token against the token store on every
// request. Because validation is a live lookup, a logged-out token is
// rejected here immediately, with no grace window.
func AuthMiddleware(auth service.IAuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
			return apperror.New(apperror.CodeInvalidToken, "missing bearer token")
		}
		token := strings.TrimSpace(authHeader[7:])

		user, err := auth.Validate(ctx.Context(), token)
		if err != nil {
			return err
		}

		ctx.Locals(LocalsUser, user)
		ctx.Locals(LocalsUserID, user.Id)
		ctx.Locals("access_token", token)
		return ctx.Next()
	}
}

// CurrentUser returns the authenticated user stashed by AuthMiddleware.
// Only call it from routes behind the middleware.
func CurrentUser(ctx *fiber.Ctx) *entity.User {
	user, _ := ctx.Locals(LocalsUser).(*entity.User)
	return user
}
