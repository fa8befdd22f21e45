package storage

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsRetryableTxError(t *testing.T) {
	if !isRetryableTxError(&pgconn.PgError{Code: "40001"}) {
		t.Error("serialization failure must be retryable")
	}
	if !isRetryableTxError(&pgconn.PgError{Code: "40P01"}) {
		t.Error("deadlock must be retryable")
	}
	if isRetryableTxError(&pgconn.PgError{Code: "23505"}) {
		t.Error("unique violation must not be retryable")
	}
	if isRetryableTxError(errors.New("connection refused")) {
		t.Error("plain errors must not be retryable")
	}
}
