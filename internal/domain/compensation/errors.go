package compensation

import "errors"

var (
	ErrWorksheetNotFound      = errors.New("worksheet not found")
	ErrRowNotFound            = errors.New("compensation row not found")
	ErrInvalidCalculationMode = errors.New("invalid calculation mode")
	ErrVendorUnavailable      = errors.New("hr platform is not configured")
	ErrEmployeeNotEditable    = errors.New("user cannot edit compensation for this employee")
)
