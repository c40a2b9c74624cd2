package database

import (
	"errors"

	"bank-cards-go/internal/store"

	goerrors "github.com/goliatone/go-errors"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// classify passes business errors through untouched and collapses anything
// else into a generic Internal error after logging the cause.
func classify(operation string, err error, fields ...zap.Field) error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return err
	}
	zap.L().Error("Unexpected storage failure",
		append([]zap.Field{zap.String("operation", operation), zap.Error(err)}, fields...)...)
	return store.Internal()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
