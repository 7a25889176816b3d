package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "postgres", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "postgres_other", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "mysql", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, want: true},
		{name: "mysql_other", err: &mysql.MySQLError{Number: 1452}, want: false},
		{name: "sqlite", err: errors.New("UNIQUE constraint failed: meals.name, meals.dietary_flags"), want: true},
		{name: "other", err: errors.New("boom"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}

func TestIsLockTimeoutErr(t *testing.T) {
	assert.True(t, IsLockTimeoutErr(&pgconn.PgError{Code: "55P03"}))
	assert.True(t, IsLockTimeoutErr(&mysql.MySQLError{Number: 1205}))
	assert.True(t, IsLockTimeoutErr(errors.New("database is locked")))
	assert.False(t, IsLockTimeoutErr(errors.New("boom")))
	assert.False(t, IsLockTimeoutErr(nil))
}

func TestDialect(t *testing.T) {
	for _, typ := range []string{"mysql", "MariaDB", "postgres", "sqlite"} {
		d, err := Dialect(Config{Type: typ, Name: "mensa"})
		assert.NoError(t, err, typ)
		assert.NotNil(t, d, typ)
	}

	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}
