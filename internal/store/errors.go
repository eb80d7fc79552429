package store

import "errors"

var (
	// ErrCorruptStore indicates a store file exists but could not be parsed.
	ErrCorruptStore = errors.New("store: corrupt store file")
)
