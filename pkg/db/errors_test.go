package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolationTypedError(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "ux_orders_open_table",
		Message:        `duplicate key value violates unique constraint "ux_orders_open_table"`,
	}
	wrapped := fmt.Errorf("create order: %w", pgErr)

	assert.True(t, IsUniqueViolation(pgErr, ""))
	assert.True(t, IsUniqueViolation(wrapped, "ux_orders_open_table"))
	assert.False(t, IsUniqueViolation(wrapped, "ux_order_items_order_position"),
		"constraint name must match when provided")
}

func TestIsUniqueViolationOtherPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", Message: "foreign key violation"}
	assert.False(t, IsUniqueViolation(pgErr, ""))
	assert.False(t, IsUniqueViolation(pgErr, "ux_orders_open_table"))
}

func TestIsUniqueViolationMessageFallback(t *testing.T) {
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: orders.table_no"), ""))
	assert.True(t, IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "ux_orders_open_table"`), ""))
	assert.True(t, IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "ux_orders_open_table"`), "ux_orders_open_table"))
	assert.False(t, IsUniqueViolation(errors.New("no such table: order_items"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}
