package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingRepository(t *testing.T) {
	repo := NewBookingRepository(nil)
	assert.NotNil(t, repo)
}

func TestIsLockTimeout(t *testing.T) {
	assert.True(t, IsLockTimeout(&pgconn.PgError{Code: "55P03"}))
	assert.True(t, IsLockTimeout(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsLockTimeout(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, IsLockTimeout(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsLockTimeout(errors.New("plain error")))
	assert.False(t, IsLockTimeout(nil))
}
