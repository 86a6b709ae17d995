package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMissingToken is returned when no bearer token was presented.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken covers bad signatures, wrong algorithms, expiry and
	// malformed claims.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the authenticated caller carried by a token.
type Identity struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
}

// Claims is the JWT payload: {id, username} plus the registered claims.
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token together with its validity window.
type IssuedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service issues and verifies HS256 tokens. It holds no per-token state:
// a token is valid while its signature checks out and it has not expired.
type Service struct {
	cfg    *config.Jwt
	logger *slog.Logger
	now    func() time.Time
}

func New(cfg *config.Jwt, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, logger: logger, now: time.Now}
}

// Issue signs a token for identity that expires after the configured expiry.
func (s *Service) Issue(identity Identity) (*IssuedToken, error) {
	log := s.logger.With("userID", identity.UserID)
	log.Debug("Issue called")

	// NumericDate has second precision; truncate so the stored token row matches the claims.
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.cfg.Expiry)
	claims := Claims{
		UserID:   identity.UserID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		log.Error("Issue failed", "error", err)
		return nil, err
	}
	return &IssuedToken{Token: signed, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// KeyFunc resolves the verification key and pins the algorithm to HS256.
// It is shared with the HTTP middleware so both paths accept the same tokens.
func (s *Service) KeyFunc(t *jwt.Token) (any, error) {
	if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return []byte(s.cfg.Secret), nil
}

// Authenticate verifies raw and returns the identity it carries.
func (s *Service) Authenticate(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, s.KeyFunc)
	if err != nil {
		s.logger.Debug("Authenticate failed", "error", err)
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return IdentityFromToken(token)
}

// IdentityFromToken extracts the identity from an already verified token.
func IdentityFromToken(token *jwt.Token) (Identity, error) {
	if token == nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID <= 0 || claims.Username == "" || claims.ExpiresAt == nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
