package domain

import "errors"

// ErrAccountNotFound is returned by account lookups that match nothing.
var ErrAccountNotFound = errors.New("account not found")

// SentinelAccountID is guaranteed to match no real account. Directives
// that fail identity resolution use it to force empty results instead of
// failing the whole query.
const SentinelAccountID int64 = -1

// Account is the viewer (or author) identity the search layer works with.
type Account struct {
	ID       int64
	Username string

	// Domain is empty for local accounts.
	Domain string

	// TimeZone is the IANA name of the account's configured timezone.
	// Empty means UTC.
	TimeZone string
}

// Local reports whether the account belongs to this instance.
func (a *Account) Local() bool {
	return a.Domain == ""
}
