package account_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/service/auth"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) (*app.App, *gorm.DB) {
	t.Helper()
	cfg := testutils.NewSQLiteConfig()
	db := testutils.NewDB(t, cfg)
	return testutils.NewApp(db, cfg), db
}

func login(t *testing.T, a *app.App, username string) auth.Identity {
	t.Helper()
	token, err := a.AccountService.Login(context.Background(), username, "pw-"+username)
	require.NoError(t, err)
	identity, err := a.AuthService.Authenticate(token)
	require.NoError(t, err)
	return identity
}

func openAccount(t *testing.T, a *app.App, userID, balance int64) *domain.Account {
	t.Helper()
	acc, err := a.AccountService.CreateAccount(context.Background(), userID, balance)
	require.NoError(t, err)
	return acc
}

func balanceOf(t *testing.T, a *app.App, userID, accountID int64) int64 {
	t.Helper()
	b, err := a.AccountService.GetBalance(context.Background(), userID, accountID)
	require.NoError(t, err)
	return b
}

func TestReferenceScenario(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)
	ctx := context.Background()
	svc := a.AccountService

	alice := login(t, a, "alice")
	first, err := svc.CreateAccount(ctx, alice.UserID, 100)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, first.UserID)
	assert.Equal(t, int64(100), first.Balance)
	assert.NotZero(t, first.ID)

	newBalance, err := svc.Deposit(ctx, alice.UserID, first.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(150), newBalance)

	w, err := svc.Withdraw(ctx, alice.UserID, first.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(30), w.Withdrawn)
	assert.Equal(t, int64(120), w.NewBalance)

	second := openAccount(t, a, alice.UserID, 0)
	res, err := svc.Transfer(ctx, alice.UserID, first.ID, second.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.SourceNewBalance)
	assert.Equal(t, int64(20), res.DestinationNewBalance)

	assert.Equal(t, int64(100), balanceOf(t, a, alice.UserID, first.ID))
	assert.Equal(t, int64(20), balanceOf(t, a, alice.UserID, second.ID))
}

func TestCreateAccountNegativeBalance(t *testing.T) {
	t.Parallel()
	a, db := newTestApp(t)
	alice := login(t, a, "alice")

	acc, err := a.AccountService.CreateAccount(context.Background(), alice.UserID, -1)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Nil(t, acc)
	assert.Zero(t, testutils.CountRows(t, db, "accounts"))
}

func TestGetBalanceOwnership(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)
	alice := login(t, a, "alice")
	bob := login(t, a, "bob")
	acc := openAccount(t, a, alice.UserID, 10)

	_, err := a.AccountService.GetBalance(context.Background(), bob.UserID, acc.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = a.AccountService.GetBalance(context.Background(), alice.UserID, acc.ID+100)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestDepositErrors(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)
	ctx := context.Background()
	alice := login(t, a, "alice")
	bob := login(t, a, "bob")
	acc := openAccount(t, a, alice.UserID, math.MaxInt64-10)

	_, err := a.AccountService.Deposit(ctx, alice.UserID, acc.ID, 0)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = a.AccountService.Deposit(ctx, alice.UserID, acc.ID, -5)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = a.AccountService.Deposit(ctx, bob.UserID, acc.ID, 5)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	_, err = a.AccountService.Deposit(ctx, alice.UserID, acc.ID, 11)
	require.ErrorIs(t, err, domain.ErrDepositAmountExceedsMaxSafeInt)

	assert.Equal(t, int64(math.MaxInt64-10), balanceOf(t, a, alice.UserID, acc.ID))
}

func TestWithdrawErrors(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)
	ctx := context.Background()
	alice := login(t, a, "alice")
	bob := login(t, a, "bob")
	acc := openAccount(t, a, alice.UserID, 50)

	_, err := a.AccountService.Withdraw(ctx, alice.UserID, acc.ID, 51)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	_, err = a.AccountService.Withdraw(ctx, alice.UserID, acc.ID, 0)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = a.AccountService.Withdraw(ctx, bob.UserID, acc.ID, 1)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	assert.Equal(t, int64(50), balanceOf(t, a, alice.UserID, acc.ID))

	w, err := a.AccountService.Withdraw(ctx, alice.UserID, acc.ID, 50)
	require.NoError(t, err)
	assert.Zero(t, w.NewBalance)
}

func TestTransferToAnotherUsersAccount(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)
	alice := login(t, a, "alice")
	bob := login(t, a, "bob")
	src := openAccount(t, a, alice.UserID, 100)
	dst := openAccount(t, a, bob.UserID, 5)

	res, err := a.AccountService.Transfer(context.Background(), alice.UserID, src.ID, dst.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(60), res.SourceNewBalance)
	assert.Equal(t, int64(45), res.DestinationNewBalance)
	assert.Equal(t, int64(45), balanceOf(t, a, bob.UserID, dst.ID))

	// bob does not own src, so he cannot move money back out of it
	_, err = a.AccountService.Transfer(context.Background(), bob.UserID, src.ID, dst.ID, 1)
	require.ErrorIs(t, err, domain.ErrSourceAccountNotFound)
}

func TestTransferErrorPrecedence(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)
	ctx := context.Background()
	alice := login(t, a, "alice")
	bob := login(t, a, "bob")
	poor := openAccount(t, a, alice.UserID, 10)
	rich := openAccount(t, a, alice.UserID, 1000)
	bobs := openAccount(t, a, bob.UserID, 10)
	const missing = int64(999999)

	tests := []struct {
		name    string
		user    int64
		src     int64
		dst     int64
		amount  int64
		wantErr error
	}{
		{name: "invalid amount first", user: alice.UserID, src: missing, dst: missing + 1, amount: 0, wantErr: domain.ErrInvalidAmount},
		{name: "same account", user: alice.UserID, src: rich.ID, dst: rich.ID, amount: 1, wantErr: domain.ErrSameAccountTransfer},
		{name: "source missing beats destination missing", user: alice.UserID, src: missing, dst: missing + 1, amount: 1, wantErr: domain.ErrSourceAccountNotFound},
		{name: "source not owned", user: alice.UserID, src: bobs.ID, dst: rich.ID, amount: 1, wantErr: domain.ErrSourceAccountNotFound},
		{name: "insufficient funds beats destination missing", user: alice.UserID, src: poor.ID, dst: missing, amount: 11, wantErr: domain.ErrInsufficientFunds},
		{name: "destination missing", user: alice.UserID, src: rich.ID, dst: missing, amount: 1, wantErr: domain.ErrDestinationAccountNotFound},
	}
	for _, tc := range tests {
		_, err := a.AccountService.Transfer(ctx, tc.user, tc.src, tc.dst, tc.amount)
		require.ErrorIs(t, err, tc.wantErr, tc.name)
	}

	assert.Equal(t, int64(10), balanceOf(t, a, alice.UserID, poor.ID))
	assert.Equal(t, int64(1000), balanceOf(t, a, alice.UserID, rich.ID))
	assert.Equal(t, int64(10), balanceOf(t, a, bob.UserID, bobs.ID))
}

func TestTransferDescendingIDs(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)
	alice := login(t, a, "alice")
	low := openAccount(t, a, alice.UserID, 0)
	high := openAccount(t, a, alice.UserID, 70)
	require.Less(t, low.ID, high.ID)

	res, err := a.AccountService.Transfer(context.Background(), alice.UserID, high.ID, low.ID, 70)
	require.NoError(t, err)
	assert.Zero(t, res.SourceNewBalance)
	assert.Equal(t, int64(70), res.DestinationNewBalance)
}

func TestTransferAtomicWhenCreditWriteFails(t *testing.T) {
	t.Parallel()
	a, db := newTestApp(t)
	alice := login(t, a, "alice")
	src := openAccount(t, a, alice.UserID, 100)
	dst := openAccount(t, a, alice.UserID, 0)

	var armed atomic.Bool
	var updates atomic.Int32
	injected := errors.New("injected write failure")
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_second_update", func(tx *gorm.DB) {
		if !armed.Load() || tx.Statement.Table != "accounts" {
			return
		}
		if updates.Add(1) == 2 {
			_ = tx.AddError(injected)
		}
	}))
	armed.Store(true)

	_, err := a.AccountService.Transfer(context.Background(), alice.UserID, src.ID, dst.ID, 30)
	require.ErrorIs(t, err, domain.ErrStorage)
	require.ErrorIs(t, err, injected)
	armed.Store(false)

	assert.Equal(t, int32(2), updates.Load(), "debit should have been written before the credit failed")
	assert.Equal(t, int64(100), balanceOf(t, a, alice.UserID, src.ID))
	assert.Equal(t, int64(0), balanceOf(t, a, alice.UserID, dst.ID))
}

func TestConcurrentDepositsLoseNothing(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)
	alice := login(t, a, "alice")
	acc := openAccount(t, a, alice.UserID, 0)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			_, err := a.AccountService.Deposit(context.Background(), alice.UserID, acc.ID, amount)
			errs <- err
		}(int64(i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(n*(n+1)/2), balanceOf(t, a, alice.UserID, acc.ID))
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)
	alice := login(t, a, "alice")
	acc := openAccount(t, a, alice.UserID, 100)

	const n = 25
	var wg sync.WaitGroup
	var ok, insufficient atomic.Int32
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.AccountService.Withdraw(context.Background(), alice.UserID, acc.ID, 10)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientFunds):
				insufficient.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), ok.Load())
	assert.Equal(t, int32(n-10), insufficient.Load())
	assert.Zero(t, balanceOf(t, a, alice.UserID, acc.ID))
}

func TestConcurrentOpposingTransfersConserveMoney(t *testing.T) {
	t.Parallel()
	a, _ := newTestApp(t)
	alice := login(t, a, "alice")
	x := openAccount(t, a, alice.UserID, 500)
	y := openAccount(t, a, alice.UserID, 500)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(2)
		go func(amount int64) {
			defer wg.Done()
			_, err := a.AccountService.Transfer(context.Background(), alice.UserID, x.ID, y.ID, amount)
			if err != nil && !errors.Is(err, domain.ErrInsufficientFunds) {
				t.Errorf("x->y: %v", err)
			}
		}(int64(i%7 + 1))
		go func(amount int64) {
			defer wg.Done()
			_, err := a.AccountService.Transfer(context.Background(), alice.UserID, y.ID, x.ID, amount)
			if err != nil && !errors.Is(err, domain.ErrInsufficientFunds) {
				t.Errorf("y->x: %v", err)
			}
		}(int64(i%5 + 1))
	}
	wg.Wait()

	bx := balanceOf(t, a, alice.UserID, x.ID)
	by := balanceOf(t, a, alice.UserID, y.ID)
	assert.GreaterOrEqual(t, bx, int64(0))
	assert.GreaterOrEqual(t, by, int64(0))
	assert.Equal(t, int64(1000), bx+by)
}

func TestResetDatabase(t *testing.T) {
	t.Parallel()
	a, db := newTestApp(t)
	ctx := context.Background()
	token, err := a.AccountService.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	identity, err := a.AuthService.Authenticate(token)
	require.NoError(t, err)
	openAccount(t, a, identity.UserID, 10)
	login(t, a, "bob")

	require.NoError(t, a.AccountService.ResetDatabase(ctx))

	assert.Zero(t, testutils.CountRows(t, db, "users"))
	assert.Zero(t, testutils.CountRows(t, db, "accounts"))
	assert.Zero(t, testutils.CountRows(t, db, "tokens"))

	// tokens are stateless and survive the reset until they expire
	_, err = a.AuthService.Authenticate(token)
	require.NoError(t, err)

	// the username is free again and registers a brand new user
	_, err = a.AccountService.Login(ctx, "alice", "a-different-password")
	require.NoError(t, err)
	assert.Equal(t, int64(1), testutils.CountRows(t, db, "users"))
}
