package validation

import "errors"

// ErrPayloadTooLarge is returned when the request body exceeds size limits
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrMissingFile is returned when the expected multipart part is absent
var ErrMissingFile = errors.New("missing file")
