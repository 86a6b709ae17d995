package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrInvalidReference is returned when a record points at a row that no longer exists
	ErrInvalidReference = errors.New("invalid reference")
	// ErrStorage wraps any failure of the underlying store
	ErrStorage = errors.New("storage error")
)

// Authentication errors
var (
	// ErrInvalidCredentials is returned when a known username is presented with the wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Account errors
var (
	// ErrInvalidAmount is returned when an amount is not a positive integer
	// (or, for opening balances, is negative).
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrDepositAmountExceedsMaxSafeInt is returned when a credit would overflow the balance.
	ErrDepositAmountExceedsMaxSafeInt = fmt.Errorf("%w: deposit amount exceeds maximum safe integer value", ErrInvalidAmount)
	// ErrInsufficientFunds is returned when a debit exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAccountNotFound is returned when an account does not exist or is not owned by the caller.
	ErrAccountNotFound = errors.New("account not found")
	ErrSourceAccountNotFound      = fmt.Errorf("source %w", ErrAccountNotFound)
	ErrDestinationAccountNotFound = fmt.Errorf("destination %w", ErrAccountNotFound)
	// ErrSameAccountTransfer is returned when source and destination are the same account.
	ErrSameAccountTransfer = errors.New("cannot transfer to same account")
)
