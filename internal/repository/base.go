// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"socialhub/internal/database"
	"socialhub/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// MaxPageSize caps list queries.
const MaxPageSize = 100

// isUniqueViolation checks if a DB error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

// translate maps a gorm error to an AppError for resource/id.
func translate(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// translateCreate maps an insert error, reporting duplicates as validation errors with msg.
func translateCreate(err error, duplicateMsg string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return models.NewValidationError(duplicateMsg)
	}
	return models.NewInternalError(err)
}

// inTx reports whether ctx carries a transaction; cached reads are skipped inside one.
func inTx(ctx context.Context) bool {
	_, ok := database.TxFromContext(ctx)
	return ok
}

// clampPage normalizes limit/offset for list queries.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
