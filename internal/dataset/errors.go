package dataset

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input file")
	ErrHeaderMismatch = errors.New("header does not match schema")
)
