package rbp

import "errors"

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrMissingClaims    = errors.New("company_id or user_id claim is missing")
)
