package database

import (
	"strings"

	"gorm.io/gorm"
)

// maxTxRetries bounds the internal retries on serialization failures before
// the conflict is surfaced to the caller.
const maxTxRetries = 3

// RunInTransaction executes fn inside a transaction, retrying a bounded
// number of times when the database reports a serialization or deadlock
// failure. Any other error aborts immediately.
func RunInTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = db.Transaction(fn)
		if err == nil || !IsSerializationFailure(err) {
			return err
		}
	}
	return err
}

// IsSerializationFailure recognizes Postgres serialization (40001) and
// deadlock (40P01) failures by SQLSTATE or message.
func IsSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 40001") ||
		strings.Contains(msg, "SQLSTATE 40P01") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "deadlock detected")
}
