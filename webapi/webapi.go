// Package webapi provides the HTTP API of the ledger service.
// It is organized into sub-packages:
// - auth: login with auto-registration
// - account: account, balance and money movement endpoints
// - common: problem responses and request binding
package webapi

import (
	"errors"

	_ "github.com/amirasaad/ledger/docs"
	"github.com/amirasaad/ledger/pkg/app"
	accountweb "github.com/amirasaad/ledger/webapi/account"
	authweb "github.com/amirasaad/ledger/webapi/auth"
	"github.com/amirasaad/ledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(app *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return common.ErrorResponseJSON(c, fe.Code, fe.Message, nil)
			}
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})
	fiberApp.Get("/swagger/*", swagger.New(swagger.Config{
		TryItOutEnabled:      true,
		PersistAuthorization: true,
	}))

	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Ledger API is running!")
	})

	authweb.Routes(fiberApp, app.AccountService)
	accountweb.Routes(fiberApp, app.AccountService, app.AuthService)
	return fiberApp
}
