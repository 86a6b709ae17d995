package token

import (
	"time"

	"github.com/amirasaad/ledger/infra/repository/user"
)

// Token represents an issued login token in the database.
type Token struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"not null;index"`
	Token     string    `gorm:"type:text;not null"`
	IssuedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`

	User *user.User `gorm:"constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for the Token model.
func (Token) TableName() string {
	return "tokens"
}
