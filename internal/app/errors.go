package app

import "errors"

// ErrInvalidSnapshot reports a malformed snapshot document.
var ErrInvalidSnapshot = errors.New("invalid snapshot")
