package auth

import (
	accountsvc "github.com/amirasaad/ledger/pkg/service/account"
	"github.com/amirasaad/ledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

func Routes(app *fiber.App, accountSvc *accountsvc.Service) {
	app.Post("/login", Login(accountSvc))
}

// Login authenticates a user, registering unseen usernames, and returns a JWT.
// @Summary User login
// @Description Authenticate with username and password. The first login with an unseen username registers it.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 201 {object} LoginResponse
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /login [post]
func Login(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[LoginInput](c)
		if input == nil {
			return err
		}
		token, err := accountSvc.Login(c.UserContext(), input.Username, input.Password)
		if err != nil {
			log.Errorf("Login failed for %q: %v", input.Username, err)
			return common.ProblemDetailsJSON(c, "Login failed", err)
		}
		return c.Status(fiber.StatusCreated).JSON(LoginResponse{Token: token})
	}
}
