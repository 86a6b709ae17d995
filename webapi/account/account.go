package account

import (
	"strconv"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/middleware"
	accountsvc "github.com/amirasaad/ledger/pkg/service/account"
	authsvc "github.com/amirasaad/ledger/pkg/service/auth"
	"github.com/amirasaad/ledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Routes registers the account endpoints. All of them require a bearer token.
//
// Routes:
//   - POST   /account                  : Open an account for the caller.
//   - GET    /balance/:accountId       : Balance of one of the caller's accounts.
//   - POST   /deposit                  : Credit one of the caller's accounts.
//   - POST   /withdraw                 : Debit one of the caller's accounts.
//   - POST   /transferBetweenAccounts  : Move funds from one of the caller's accounts to any account.
//   - DELETE /reset                    : Wipe users, accounts and tokens.
func Routes(app *fiber.App, accountSvc *accountsvc.Service, authSvc *authsvc.Service) {
	protected := middleware.JwtProtected(authSvc)
	app.Post("/account", protected, CreateAccount(accountSvc))
	app.Get("/balance/:accountId", protected, GetBalance(accountSvc))
	app.Post("/deposit", protected, Deposit(accountSvc))
	app.Post("/withdraw", protected, Withdraw(accountSvc))
	app.Post("/transferBetweenAccounts", protected, Transfer(accountSvc))
	app.Delete("/reset", protected, Reset(accountSvc))
}

func currentUserID(c *fiber.Ctx) (int64, bool) {
	identity, ok := middleware.CurrentIdentity(c)
	return identity.UserID, ok
}

func missingIdentity(c *fiber.Ctx) error {
	return common.ProblemDetailsJSON(c, "Unauthorized", authsvc.ErrMissingToken, "Missing user context", fiber.StatusUnauthorized)
}

// CreateAccount opens an account for the caller.
// @Summary Create a new account
// @Description Opens an account owned by the caller with the given non-negative opening balance (minor units).
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Opening balance"
// @Success 201 {object} AccountResponse "Account created"
// @Failure 400 {object} common.ProblemDetails "Invalid amount"
// @Failure 401 {object} common.ProblemDetails "Unauthorized"
// @Failure 403 {object} common.ProblemDetails "Invalid or expired token"
// @Failure 500 {object} common.ProblemDetails "Internal server error"
// @Router /account [post]
// @Security Bearer
func CreateAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := currentUserID(c)
		if !ok {
			return missingIdentity(c)
		}
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err
		}
		a, err := accountSvc.CreateAccount(c.UserContext(), userID, *input.Amount)
		if err != nil {
			log.Errorf("Failed to create account: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		log.Infof("Account %d created for user %d", a.ID, userID)
		return c.Status(fiber.StatusCreated).JSON(ToAccountResponse(a))
	}
}

// GetBalance returns the balance of one of the caller's accounts.
// @Summary Get account balance
// @Description Returns the balance of an account owned by the caller. Accounts owned by others are reported as not found.
// @Tags accounts
// @Produce json
// @Param accountId path int true "Account ID"
// @Success 200 {object} BalanceResponse "Current balance"
// @Failure 401 {object} common.ProblemDetails "Unauthorized"
// @Failure 403 {object} common.ProblemDetails "Invalid or expired token"
// @Failure 404 {object} common.ProblemDetails "Account not found"
// @Failure 500 {object} common.ProblemDetails "Internal server error"
// @Router /balance/{accountId} [get]
// @Security Bearer
func GetBalance(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := currentUserID(c)
		if !ok {
			return missingIdentity(c)
		}
		accountID, err := strconv.ParseInt(c.Params("accountId"), 10, 64)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Account not found", domain.ErrAccountNotFound)
		}
		balance, err := accountSvc.GetBalance(c.UserContext(), userID, accountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get balance", err)
		}
		return c.JSON(BalanceResponse{Balance: balance})
	}
}

// Deposit credits one of the caller's accounts.
// @Summary Deposit funds into an account
// @Description Adds a positive amount (minor units) to an account owned by the caller.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body DepositRequest true "Deposit details"
// @Success 200 {object} DepositResponse "Deposit successful"
// @Failure 400 {object} common.ProblemDetails "Invalid amount"
// @Failure 401 {object} common.ProblemDetails "Unauthorized"
// @Failure 403 {object} common.ProblemDetails "Invalid or expired token"
// @Failure 404 {object} common.ProblemDetails "Account not found"
// @Failure 500 {object} common.ProblemDetails "Internal server error"
// @Router /deposit [post]
// @Security Bearer
func Deposit(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := currentUserID(c)
		if !ok {
			return missingIdentity(c)
		}
		input, err := common.BindAndValidate[DepositRequest](c)
		if input == nil {
			return err
		}
		newBalance, err := accountSvc.Deposit(c.UserContext(), userID, *input.Account, *input.Amount)
		if err != nil {
			log.Errorf("Failed to deposit: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to deposit", err)
		}
		return c.JSON(DepositResponse{Message: "Deposit successful", NewBalance: newBalance})
	}
}

// Withdraw debits one of the caller's accounts.
// @Summary Withdraw funds from an account
// @Description Removes a positive amount (minor units) from an account owned by the caller. The balance may not go negative.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body WithdrawRequest true "Withdrawal details"
// @Success 200 {object} WithdrawResponse "Withdrawal successful"
// @Failure 400 {object} common.ProblemDetails "Invalid amount or insufficient funds"
// @Failure 401 {object} common.ProblemDetails "Unauthorized"
// @Failure 403 {object} common.ProblemDetails "Invalid or expired token"
// @Failure 404 {object} common.ProblemDetails "Account not found"
// @Failure 500 {object} common.ProblemDetails "Internal server error"
// @Router /withdraw [post]
// @Security Bearer
func Withdraw(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := currentUserID(c)
		if !ok {
			return missingIdentity(c)
		}
		input, err := common.BindAndValidate[WithdrawRequest](c)
		if input == nil {
			return err
		}
		res, err := accountSvc.Withdraw(c.UserContext(), userID, *input.Account, *input.Amount)
		if err != nil {
			log.Errorf("Failed to withdraw: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to withdraw", err)
		}
		return c.JSON(WithdrawResponse{Withdrawn: res.Withdrawn, NewBalance: res.NewBalance})
	}
}

// Transfer moves funds from one of the caller's accounts to any other account.
// @Summary Transfer funds between accounts
// @Description Moves a positive amount from an account owned by the caller to any other account. Both balances change together or not at all.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body TransferRequest true "Transfer details"
// @Success 200 {object} TransferResponse "Transfer successful"
// @Failure 400 {object} common.ProblemDetails "Invalid amount, same account or insufficient funds"
// @Failure 401 {object} common.ProblemDetails "Unauthorized"
// @Failure 403 {object} common.ProblemDetails "Invalid or expired token"
// @Failure 404 {object} common.ProblemDetails "Source or destination account not found"
// @Failure 500 {object} common.ProblemDetails "Internal server error"
// @Router /transferBetweenAccounts [post]
// @Security Bearer
func Transfer(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := currentUserID(c)
		if !ok {
			return missingIdentity(c)
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		res, err := accountSvc.Transfer(
			c.UserContext(),
			userID,
			*input.SourceAccountID,
			*input.DestinationAccountID,
			*input.Amount,
		)
		if err != nil {
			log.Errorf("Failed to transfer: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to transfer", err)
		}
		return c.JSON(TransferResponse{
			SourceNewBalance:      res.SourceNewBalance,
			DestinationNewBalance: res.DestinationNewBalance,
		})
	}
}

// Reset wipes all users, accounts and tokens.
// @Summary Reset the database
// @Description Deletes every token, account and user. Previously issued tokens keep verifying until they expire.
// @Tags admin
// @Produce json
// @Success 200 {object} common.MessageResponse "Database reset"
// @Failure 401 {object} common.ProblemDetails "Unauthorized"
// @Failure 403 {object} common.ProblemDetails "Invalid or expired token"
// @Failure 500 {object} common.ProblemDetails "Internal server error"
// @Router /reset [delete]
// @Security Bearer
func Reset(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := currentUserID(c); !ok {
			return missingIdentity(c)
		}
		if err := accountSvc.ResetDatabase(c.UserContext()); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to reset database", err)
		}
		log.Warnf("Database reset")
		return c.JSON(common.MessageResponse{Message: "Database reset"})
	}
}
