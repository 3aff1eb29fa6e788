package fetch

import "errors"

// Fetch errors.
//
// Design decision: We return sentinel errors rather than typed errors because
// the walker only needs to tell failure kinds apart for logging. Every kind
// ends the run the same way.
var (
	// ErrUnexpectedStatus is returned when the server answers with a
	// non-2xx status code. It is not retried.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrRetriesExhausted is returned when every attempt failed at the
	// transport level. It wraps the error of the last attempt.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrEmptyContent is returned when cleaning leaves nothing of the body.
	ErrEmptyContent = errors.New("page has no content")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy address is
	// not in "host:port" format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)
