package dao

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrStoreUnavailable is joined onto every failure that is not a known
// domain outcome, so callers can retry or answer with a 5xx.
var ErrStoreUnavailable = errors.New("store unavailable")

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func storeErr(op string, err error) error {
	return errors.Join(ErrStoreUnavailable, fmt.Errorf("%s -> %w", op, err))
}
