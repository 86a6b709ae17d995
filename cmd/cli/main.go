package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/amirasaad/ledger/infra/initializer"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/fatih/color"
	"golang.org/x/term"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  login <username>             log in (registering on first use) and print a token
  whoami <token>               show the identity inside a token
  balance <token> <accountId>  show the balance of one of your accounts
  reset [--yes]                delete all users, accounts and tokens`

var (
	errUsage   = errors.New("invalid usage")
	errAborted = errors.New("aborted")
)

type cli struct {
	app          *app.App
	in           *bufio.Reader
	out          io.Writer
	readPassword func() (string, error)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Println(usage)
		os.Exit(2)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		color.Red("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		color.Red("Failed to initialize dependencies: %v", err)
		os.Exit(1)
	}

	c := &cli{
		app:          app.New(deps, cfg),
		in:           bufio.NewReader(os.Stdin),
		out:          color.Output,
		readPassword: readTerminalPassword,
	}
	if err := c.run(context.Background(), args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println(usage)
			os.Exit(2)
		}
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func readTerminalPassword() (string, error) {
	fmt.Print("Password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	return string(b), err
}

func (c *cli) run(ctx context.Context, args []string) error {
	switch args[0] {
	case "login":
		if len(args) != 2 {
			return errUsage
		}
		return c.login(ctx, args[1])
	case "whoami":
		if len(args) != 2 {
			return errUsage
		}
		return c.whoami(args[1])
	case "balance":
		if len(args) != 3 {
			return errUsage
		}
		return c.balance(ctx, args[1], args[2])
	case "reset":
		yes := len(args) == 2 && (args[1] == "--yes" || args[1] == "-y")
		if len(args) > 2 || (len(args) == 2 && !yes) {
			return errUsage
		}
		return c.reset(ctx, yes)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func (c *cli) login(ctx context.Context, username string) error {
	password, err := c.readPassword()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	token, err := c.app.AccountService.Login(ctx, username, password)
	if err != nil {
		return err
	}
	_, _ = color.New(color.FgGreen).Fprintf(c.out, "Logged in as %s\n", username)
	_, _ = fmt.Fprintln(c.out, token)
	return nil
}

func (c *cli) whoami(token string) error {
	identity, err := c.app.AuthService.Authenticate(token)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "%s %s (id %d)\n",
		color.CyanString("user"), identity.Username, identity.UserID)
	return nil
}

func (c *cli) balance(ctx context.Context, token, rawID string) error {
	identity, err := c.app.AuthService.Authenticate(token)
	if err != nil {
		return err
	}
	accountID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: account id %q is not a number", errUsage, rawID)
	}
	balance, err := c.app.AccountService.GetBalance(ctx, identity.UserID, accountID)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "Account %d balance: %s\n",
		accountID, color.New(color.Bold).Sprint(balance))
	return nil
}

func (c *cli) reset(ctx context.Context, yes bool) error {
	if !yes {
		_, _ = color.New(color.FgYellow).Fprint(c.out, "This deletes every user, account and token. Continue? [y/N] ")
		answer, err := c.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			return errAborted
		}
	}
	if err := c.app.AccountService.ResetDatabase(ctx); err != nil {
		return err
	}
	_, _ = color.New(color.FgGreen).Fprintln(c.out, "Database reset")
	return nil
}
