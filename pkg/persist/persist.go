package persist

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrDuplicate is returned by a transaction wrapped with FlagDupes when a
// row collides with an existing key.
var ErrDuplicate = errors.New("duplicate row")

type Transaction interface {
	Insert(list ...interface{}) error
}

type InsertFunc func(...interface{}) error

func (f InsertFunc) Insert(list ...interface{}) error {
	return f(list...)
}

// FlagDupes translates driver-specific key violations into ErrDuplicate so
// callers can skip the row and carry on.
func FlagDupes(t Transaction) Transaction {
	return InsertFunc(func(list ...interface{}) error {
		err := t.Insert(list...)
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	})
}

func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var sqliteError sqlite3.Error
	if errors.As(err, &sqliteError) {
		return errors.Is(sqliteError.ExtendedCode, sqlite3.ErrConstraintUnique) ||
			errors.Is(sqliteError.ExtendedCode, sqlite3.ErrConstraintPrimaryKey)
	}
	var pqError *pq.Error
	if errors.As(err, &pqError) {
		return pqError.Code == "23505" // unique_violation
	}
	return false
}
