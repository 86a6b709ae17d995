package domain

import "time"

// Token records a JWT handed out at login. Rows are kept for audit only;
// verification never consults them.
type Token struct {
	ID        int64
	UserID    int64
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
