package notify

import "errors"

var (
	// ErrUnsupportedProvider indicates the recipient's mail domain has no
	// entry in the provider table.
	ErrUnsupportedProvider = errors.New("notify: unsupported mail provider")

	// ErrMalformedAddress indicates the recipient address has no domain part.
	ErrMalformedAddress = errors.New("notify: malformed email address")

	// ErrSendTimeout indicates the SMTP delivery did not complete within
	// the configured send timeout.
	ErrSendTimeout = errors.New("notify: send timed out")
)
