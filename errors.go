package hsafgrib

import "errors"

// Errors returned by the file handler and reader. Callers test for them
// with errors.Is; the returned errors wrap the underlying cause.
var (
	// ErrUnknownFormat reports a file whose first message cannot be read
	// or lacks the keys every H-SAF product carries.
	ErrUnknownFormat = errors.New("unknown GRIB file format")
	// ErrUnknownProjection reports a message without usable space-view
	// grid keys.
	ErrUnknownProjection = errors.New("unknown GRIB projection information")
	// ErrWrongProduct reports a dataset requested from a file of another
	// product.
	ErrWrongProduct = errors.New("file does not contain product")

	ErrDatasetNotFound = errors.New("dataset not available")
	ErrInvalidConfig   = errors.New("invalid reader configuration")
)
