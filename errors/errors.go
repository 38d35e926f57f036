package errors

import "github.com/pkg/errors"

var (
	// common errors
	ErrTenantMissing     = errors.New("tenant is missing")
	ErrConnectionTimeout = errors.New("connection timeout")

	// mailbox errors
	ErrAuthExpired     = errors.New("mailbox authentication expired")
	ErrAccountNotFound = errors.New("mailbox account not found")

	// ingestion errors
	ErrAlreadyImported = errors.New("message already imported")
)

// IsAuthExpired reports whether err is, or wraps, ErrAuthExpired
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}
