package repository

import (
	"errors"
	"fmt"
	"testing"

	"socialhub/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"postgres 23505", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped postgres 23505", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"postgres other code", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite", errors.New("UNIQUE constraint failed: friends.user_id, friends.friend_id"), true},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"other", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "User", 1))
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(translate(gorm.ErrRecordNotFound, "User", 1)))
	assert.Equal(t, models.CodeInternal, models.ErrorCode(translate(errors.New("boom"), "User", 1)))
	assert.Equal(t, models.CodeValidation, models.ErrorCode(translateCreate(&pgconn.PgError{Code: "23505"}, "dup")))
}

func TestClampPage(t *testing.T) {
	l, o := clampPage(0, -5)
	assert.Equal(t, 20, l)
	assert.Equal(t, 0, o)
	l, _ = clampPage(1000, 0)
	assert.Equal(t, MaxPageSize, l)
}
