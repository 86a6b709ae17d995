// Package testutils wires real services over throwaway databases for tests.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/ledger/infra"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// JwtSecret signs every token issued by test apps.
const JwtSecret = "test-secret"

// NewConfig returns an App config pointing at the given database.
func NewConfig(driver, url string) *config.App {
	return &config.App{
		Env:    "test",
		Server: &config.Server{Scheme: "http", Host: "localhost", Port: 3000},
		Log:    &config.Log{Format: "text", Prefix: "[ledger-test]"},
		DB: &config.DB{
			Driver:       driver,
			Url:          url,
			MaxOpenConns: 10,
			QueryTimeout: 5 * time.Second,
			Migrate:      true,
		},
		Auth: &config.Auth{
			Jwt:        &config.Jwt{Secret: JwtSecret, Expiry: time.Hour},
			BcryptCost: bcrypt.MinCost,
		},
	}
}

// NewSQLiteConfig returns a config for a fresh, private in-memory database.
func NewSQLiteConfig() *config.App {
	return NewConfig(config.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
}

// NewDB opens and migrates the database described by cfg and closes it when
// the test ends.
func NewDB(t testing.TB, cfg *config.App) *gorm.DB {
	t.Helper()
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.Migrate(db, cfg.DB.Driver))
	return db
}

// NewPostgresConfig starts a Postgres container that lives for the test.
func NewPostgresConfig(t testing.TB) *config.App {
	t.Helper()
	ctx := context.Background()
	pg, err := tcpostgres.Run(
		ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pg) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return NewConfig(config.DriverPostgres, dsn)
}

// NewApp builds the services over db.
func NewApp(db *gorm.DB, cfg *config.App) *app.App {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return app.New(&app.Deps{
		Uow:    infra.NewGormUoW(db, cfg.DB.QueryTimeout),
		Logger: logger,
	}, cfg)
}

// NewServer builds the full HTTP app over a fresh SQLite database.
func NewServer(t testing.TB) (*fiber.App, *app.App, *gorm.DB) {
	t.Helper()
	cfg := NewSQLiteConfig()
	db := NewDB(t, cfg)
	a := NewApp(db, cfg)
	return webapi.SetupApp(a), a, db
}

// MakeRequest is a helper for making HTTP requests in tests.
func MakeRequest(t testing.TB, app *fiber.App, method, path, body, token string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// DecodeJSON reads resp's body into a value of type T.
func DecodeJSON[T any](t testing.TB, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// LoginUser logs in (registering on first use) over HTTP and returns the token.
func LoginUser(t testing.TB, app *fiber.App, username, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	resp := MakeRequest(t, app, http.MethodPost, "/login", body, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := DecodeJSON[map[string]string](t, resp)
	require.NotEmpty(t, out["token"])
	return out["token"]
}

// CountRows returns the number of rows in table.
func CountRows(t testing.TB, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}
