package config

import (
	"fmt"
	"time"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DB struct {
	Driver       string        `envconfig:"DRIVER" default:"postgres"`
	Url          string        `envconfig:"URL"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	QueryTimeout time.Duration `envconfig:"QUERY_TIMEOUT" default:"5s"`
	Migrate      bool          `envconfig:"MIGRATE" default:"true"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"1h"`
}

type Auth struct {
	Jwt        *Jwt `envconfig:"JWT"`
	BcryptCost int  `envconfig:"BCRYPT_COST" default:"10"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[ledger]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

// Addr is the listen address for the HTTP server.
func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type App struct {
	Env    string  `envconfig:"APP_ENV" default:"development"`
	Server *Server `envconfig:"SERVER"`
	Log    *Log    `envconfig:"LOG"`
	DB     *DB     `envconfig:"DATABASE"`
	Auth   *Auth   `envconfig:"AUTH"`
}

// Validate checks the settings envconfig cannot express as tags.
func (a *App) Validate() error {
	switch a.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", a.DB.Driver)
	}
	if a.DB.Url == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	if a.Auth.Jwt.Secret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is not set")
	}
	if a.DB.QueryTimeout <= 0 {
		return fmt.Errorf("DATABASE_QUERY_TIMEOUT must be positive, got %s", a.DB.QueryTimeout)
	}
	if a.Auth.Jwt.Expiry <= 0 {
		return fmt.Errorf("AUTH_JWT_EXPIRY must be positive, got %s", a.Auth.Jwt.Expiry)
	}
	if a.Auth.BcryptCost < 4 || a.Auth.BcryptCost > 31 {
		return fmt.Errorf("AUTH_BCRYPT_COST must be between 4 and 31, got %d", a.Auth.BcryptCost)
	}
	return nil
}
