package service

import "errors"

// ErrForbidden is returned when the principal may not act on the resource.
var ErrForbidden = errors.New("forbidden")
