package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapGormErrorToDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{
			name:     "duplicate key error maps to ErrAlreadyExists",
			input:    gorm.ErrDuplicatedKey,
			expected: domain.ErrAlreadyExists,
		},
		{
			name:     "record not found error maps to ErrNotFound",
			input:    gorm.ErrRecordNotFound,
			expected: domain.ErrNotFound,
		},
		{
			name:     "foreign key violation maps to ErrInvalidReference",
			input:    gorm.ErrForeignKeyViolated,
			expected: domain.ErrInvalidReference,
		},
		{
			name:     "wrapped duplicate key error maps correctly",
			input:    errors.Join(errors.New("outer error"), gorm.ErrDuplicatedKey),
			expected: domain.ErrAlreadyExists,
		},
		{
			name:     "fmt wrapped record not found maps correctly",
			input:    fmt.Errorf("query failed: %w", gorm.ErrRecordNotFound),
			expected: domain.ErrNotFound,
		},
		{
			name:     "unknown error becomes storage error",
			input:    errors.New("connection reset"),
			expected: domain.ErrStorage,
		},
		{
			name:     "deadline becomes storage error",
			input:    context.DeadlineExceeded,
			expected: domain.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := MapGormErrorToDomain(tt.input)
			require.ErrorIs(t, result, tt.expected)
		})
	}
}

func TestMapGormErrorToDomainNil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, MapGormErrorToDomain(nil))
}

func TestStorageErrorKeepsCause(t *testing.T) {
	t.Parallel()
	cause := errors.New("disk full")
	err := MapGormErrorToDomain(cause)
	require.ErrorIs(t, err, domain.ErrStorage)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	require.NoError(t, WrapError(func() error { return nil }))
	require.ErrorIs(t, WrapError(func() error { return gorm.ErrRecordNotFound }), domain.ErrNotFound)
}
