package account_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/amirasaad/ledger/pkg/testutils"
	accountweb "github.com/amirasaad/ledger/webapi/account"
	"github.com/amirasaad/ledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type AccountTestSuite struct {
	suite.Suite
	app   *fiber.App
	db    *gorm.DB
	token string
}

func (s *AccountTestSuite) SetupTest() {
	s.app, _, s.db = testutils.NewServer(s.T())
	s.token = testutils.LoginUser(s.T(), s.app, "alice", "s3cret")
}

func TestAccountTestSuite(t *testing.T) {
	suite.Run(t, new(AccountTestSuite))
}

func (s *AccountTestSuite) do(method, path, body, token string) *http.Response {
	return testutils.MakeRequest(s.T(), s.app, method, path, body, token)
}

func (s *AccountTestSuite) createAccount(token string, amount int64) int64 {
	resp := s.do(http.MethodPost, "/account", fmt.Sprintf(`{"amount":%d}`, amount), token)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	return testutils.DecodeJSON[accountweb.AccountResponse](s.T(), resp).ID
}

func (s *AccountTestSuite) balance(token string, id int64) int64 {
	resp := s.do(http.MethodGet, fmt.Sprintf("/balance/%d", id), "", token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	return testutils.DecodeJSON[accountweb.BalanceResponse](s.T(), resp).Balance
}

func (s *AccountTestSuite) expectProblem(resp *http.Response, status int) common.ProblemDetails {
	s.Equal(status, resp.StatusCode)
	s.Equal("application/problem+json", resp.Header.Get(fiber.HeaderContentType))
	pd := testutils.DecodeJSON[common.ProblemDetails](s.T(), resp)
	s.Equal(status, pd.Status)
	return pd
}

func (s *AccountTestSuite) TestCreateAccount() {
	resp := s.do(http.MethodPost, "/account", `{"amount":1000}`, s.token)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	a := testutils.DecodeJSON[accountweb.AccountResponse](s.T(), resp)
	s.Positive(a.ID)
	s.Positive(a.UserID)
	s.Equal(int64(1000), a.Balance)
	s.False(a.CreatedAt.IsZero())
}

func (s *AccountTestSuite) TestCreateAccount_ZeroOpeningBalance() {
	id := s.createAccount(s.token, 0)
	s.Equal(int64(0), s.balance(s.token, id))
}

func (s *AccountTestSuite) TestCreateAccount_BadRequest() {
	for _, body := range []string{`{"amount":-1}`, `{}`, `{"amount":"ten"}`, `{"amount":1.5}`} {
		s.expectProblem(s.do(http.MethodPost, "/account", body, s.token), fiber.StatusBadRequest)
	}
	s.Equal(int64(0), testutils.CountRows(s.T(), s.db, "accounts"))
}

func (s *AccountTestSuite) TestProtectedRoutes_RequireToken() {
	routes := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/account", `{"amount":1}`},
		{http.MethodGet, "/balance/1", ""},
		{http.MethodPost, "/deposit", `{"account":1,"amount":1}`},
		{http.MethodPost, "/withdraw", `{"account":1,"amount":1}`},
		{http.MethodPost, "/transferBetweenAccounts", `{"sourceAccountId":1,"destinationAccountId":2,"amount":1}`},
		{http.MethodDelete, "/reset", ""},
	}
	for _, r := range routes {
		s.Run(r.method+" "+r.path, func() {
			s.expectProblem(s.do(r.method, r.path, r.body, ""), fiber.StatusUnauthorized)
			s.expectProblem(s.do(r.method, r.path, r.body, "not-a-jwt"), fiber.StatusForbidden)
		})
	}
}

func (s *AccountTestSuite) TestGetBalance_NotFound() {
	other := testutils.LoginUser(s.T(), s.app, "bob", "hunter2")
	bobs := s.createAccount(other, 500)

	s.expectProblem(s.do(http.MethodGet, fmt.Sprintf("/balance/%d", bobs), "", s.token), fiber.StatusNotFound)
	s.expectProblem(s.do(http.MethodGet, "/balance/999", "", s.token), fiber.StatusNotFound)
	s.expectProblem(s.do(http.MethodGet, "/balance/abc", "", s.token), fiber.StatusNotFound)
}

func (s *AccountTestSuite) TestDeposit() {
	id := s.createAccount(s.token, 100)

	resp := s.do(http.MethodPost, "/deposit", fmt.Sprintf(`{"account":%d,"amount":50}`, id), s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	out := testutils.DecodeJSON[accountweb.DepositResponse](s.T(), resp)
	s.Equal("Deposit successful", out.Message)
	s.Equal(int64(150), out.NewBalance)
	s.Equal(int64(150), s.balance(s.token, id))
}

func (s *AccountTestSuite) TestDeposit_Errors() {
	id := s.createAccount(s.token, 100)

	s.expectProblem(s.do(http.MethodPost, "/deposit", fmt.Sprintf(`{"account":%d,"amount":0}`, id), s.token), fiber.StatusBadRequest)
	s.expectProblem(s.do(http.MethodPost, "/deposit", fmt.Sprintf(`{"account":%d,"amount":-5}`, id), s.token), fiber.StatusBadRequest)
	s.expectProblem(s.do(http.MethodPost, "/deposit", fmt.Sprintf(`{"account":%d,"amount":9223372036854775807}`, id), s.token), fiber.StatusBadRequest)
	s.expectProblem(s.do(http.MethodPost, "/deposit", `{"account":999,"amount":5}`, s.token), fiber.StatusNotFound)
	s.Equal(int64(100), s.balance(s.token, id))
}

func (s *AccountTestSuite) TestWithdraw() {
	id := s.createAccount(s.token, 100)

	resp := s.do(http.MethodPost, "/withdraw", fmt.Sprintf(`{"account":%d,"amount":40}`, id), s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	out := testutils.DecodeJSON[accountweb.WithdrawResponse](s.T(), resp)
	s.Equal(int64(40), out.Withdrawn)
	s.Equal(int64(60), out.NewBalance)

	s.expectProblem(s.do(http.MethodPost, "/withdraw", fmt.Sprintf(`{"account":%d,"amount":61}`, id), s.token), fiber.StatusBadRequest)
	s.Equal(int64(60), s.balance(s.token, id))
}

func (s *AccountTestSuite) TestTransfer() {
	src := s.createAccount(s.token, 1000)
	other := testutils.LoginUser(s.T(), s.app, "bob", "hunter2")
	dst := s.createAccount(other, 0)

	body := fmt.Sprintf(`{"sourceAccountId":%d,"destinationAccountId":%d,"amount":300}`, src, dst)
	resp := s.do(http.MethodPost, "/transferBetweenAccounts", body, s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	out := testutils.DecodeJSON[accountweb.TransferResponse](s.T(), resp)
	s.Equal(int64(700), out.SourceNewBalance)
	s.Equal(int64(300), out.DestinationNewBalance)
	s.Equal(int64(300), s.balance(other, dst))

	// bob cannot move alice's money
	body = fmt.Sprintf(`{"sourceAccountId":%d,"destinationAccountId":%d,"amount":1}`, src, dst)
	s.expectProblem(s.do(http.MethodPost, "/transferBetweenAccounts", body, other), fiber.StatusNotFound)
}

func (s *AccountTestSuite) TestTransfer_Errors() {
	src := s.createAccount(s.token, 100)
	dst := s.createAccount(s.token, 0)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"same account", fmt.Sprintf(`{"sourceAccountId":%d,"destinationAccountId":%d,"amount":1}`, src, src), fiber.StatusBadRequest},
		{"zero amount", fmt.Sprintf(`{"sourceAccountId":%d,"destinationAccountId":%d,"amount":0}`, src, dst), fiber.StatusBadRequest},
		{"insufficient funds", fmt.Sprintf(`{"sourceAccountId":%d,"destinationAccountId":%d,"amount":101}`, src, dst), fiber.StatusBadRequest},
		{"missing source", fmt.Sprintf(`{"sourceAccountId":999,"destinationAccountId":%d,"amount":1}`, dst), fiber.StatusNotFound},
		{"missing destination", fmt.Sprintf(`{"sourceAccountId":%d,"destinationAccountId":999,"amount":1}`, src), fiber.StatusNotFound},
		{"missing amount", fmt.Sprintf(`{"sourceAccountId":%d,"destinationAccountId":%d}`, src, dst), fiber.StatusBadRequest},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.expectProblem(s.do(http.MethodPost, "/transferBetweenAccounts", tc.body, s.token), tc.status)
		})
	}
	s.Equal(int64(100), s.balance(s.token, src))
	s.Equal(int64(0), s.balance(s.token, dst))
}

func (s *AccountTestSuite) TestZeroAccountIDIsNotFound() {
	src := s.createAccount(s.token, 100)

	s.expectProblem(s.do(http.MethodPost, "/deposit", `{"account":0,"amount":5}`, s.token), fiber.StatusNotFound)
	s.expectProblem(s.do(http.MethodPost, "/withdraw", `{"account":0,"amount":5}`, s.token), fiber.StatusNotFound)

	body := fmt.Sprintf(`{"sourceAccountId":%d,"destinationAccountId":0,"amount":10}`, src)
	s.expectProblem(s.do(http.MethodPost, "/transferBetweenAccounts", body, s.token), fiber.StatusNotFound)
	s.Equal(int64(100), s.balance(s.token, src))
}

func (s *AccountTestSuite) TestMissingAccountIDIsBadRequest() {
	src := s.createAccount(s.token, 100)

	s.expectProblem(s.do(http.MethodPost, "/deposit", `{"amount":5}`, s.token), fiber.StatusBadRequest)
	s.expectProblem(s.do(http.MethodPost, "/withdraw", `{"amount":5}`, s.token), fiber.StatusBadRequest)

	body := fmt.Sprintf(`{"sourceAccountId":%d,"amount":10}`, src)
	s.expectProblem(s.do(http.MethodPost, "/transferBetweenAccounts", body, s.token), fiber.StatusBadRequest)
	s.Equal(int64(100), s.balance(s.token, src))
}

func (s *AccountTestSuite) TestConcurrentDeposits() {
	id := s.createAccount(s.token, 0)

	const n = 20
	var wg sync.WaitGroup
	codes := make(chan int, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := s.do(http.MethodPost, "/deposit", fmt.Sprintf(`{"account":%d,"amount":10}`, id), s.token)
			_ = resp.Body.Close()
			codes <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		s.Equal(fiber.StatusOK, code)
	}
	s.Equal(int64(n*10), s.balance(s.token, id))
}

func (s *AccountTestSuite) TestReset() {
	s.createAccount(s.token, 100)

	resp := s.do(http.MethodDelete, "/reset", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	out := testutils.DecodeJSON[common.MessageResponse](s.T(), resp)
	s.NotEmpty(out.Message)

	s.Equal(int64(0), testutils.CountRows(s.T(), s.db, "users"))
	s.Equal(int64(0), testutils.CountRows(s.T(), s.db, "accounts"))
	s.Equal(int64(0), testutils.CountRows(s.T(), s.db, "tokens"))

	// the token still verifies; its user is gone
	s.expectProblem(s.do(http.MethodGet, "/balance/1", "", s.token), fiber.StatusNotFound)
}
