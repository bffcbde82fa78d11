package controller

import (
	"pdfchat-be/internal/dto"
	"pdfchat-be/internal/pkg/serverutils"
	"pdfchat-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router, authRequired fiber.Handler)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Refresh(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
	RotatePassword(ctx *fiber.Ctx) error
}

type authController struct {
	service     service.IAuthService
	credentials service.ICredentialStore
	validate    *validator.Validate
}

func NewAuthController(authService service.IAuthService, credentials service.ICredentialStore) IAuthController {
	return &authController{
		service:     authService,
		credentials: credentials,
		validate:    validator.New(),
	}
}

func (c *authController) RegisterRoutes(r fiber.Router, authRequired fiber.Handler) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Post("/refresh", c.Refresh)
	h.Post("/logout", authRequired, c.Logout)
	h.Get("/me", authRequired, c.Me)
	h.Post("/password", authRequired, c.RotatePassword)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := c.validate.Struct(&req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusCreated,
		"message": "User registered successfully",
		"data":    res,
	})
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := c.validate.Struct(&req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "Login successful",
		"data":    res,
	})
}

func (c *authController) Refresh(ctx *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := c.validate.Struct(&req); err != nil {
		return err
	}

	res, err := c.service.Refresh(ctx.Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "Token refreshed",
		"data":    res,
	})
}

// Logout always reports success to the client. Deleting an already-deleted
// token is a no-op, so repeated logouts with the same token are harmless.
func (c *authController) Logout(ctx *fiber.Ctx) error {
	var req dto.LogoutRequest
	_ = ctx.BodyParser(&req)

	accessToken, _ := ctx.Locals("access_token").(string)
	if err := c.service.Logout(ctx.Context(), accessToken, req.RefreshToken); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "Logged out successfully",
		"data":    nil,
	})
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	user := serverutils.CurrentUser(ctx)
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "OK",
		"data": dto.UserDTO{
			Id:        user.Id,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
	})
}

func (c *authController) RotatePassword(ctx *fiber.Ctx) error {
	var req dto.RotatePasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := c.validate.Struct(&req); err != nil {
		return err
	}

	user := serverutils.CurrentUser(ctx)
	if err := c.credentials.RotatePassword(ctx.Context(), user.Id, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "Password updated",
		"data":    nil,
	})
}
