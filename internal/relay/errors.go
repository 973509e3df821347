package relay

import "errors"

// Rejections. Each one is answered with the same 418 response; the detail
// only reaches the log stream.
var (
	ErrInvalidMethod = errors.New("method not allowed")
	ErrMalformedBody = errors.New("malformed body")
	ErrRouteNotFound = errors.New("route not found")
)
