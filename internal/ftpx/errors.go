package ftpx

import "errors"

// Error kinds surfaced by this package and the packages built on it.
// Callers match them with errors.Is; every returned error wraps one of
// these with path/server context.
var (
	// ErrConnection covers DNS, TCP, TLS and login failures. Fatal to the
	// request; no retry is attempted at this level.
	ErrConnection = errors.New("ftp connection failed")

	// ErrListing means the remote server rejected a directory listing.
	ErrListing = errors.New("directory listing failed")

	// ErrEnumeration means the root of a recursive walk could not be
	// entered. Failures below the root are logged and skipped instead.
	ErrEnumeration = errors.New("image enumeration failed")

	// ErrFetch covers file transfer failures.
	ErrFetch = errors.New("file download failed")

	// ErrNotFound means random selection found no images.
	ErrNotFound = errors.New("no images found")

	// ErrInvalidRequest means a required setting is missing or malformed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRender covers decode, orientation and resize failures.
	ErrRender = errors.New("image render failed")
)
