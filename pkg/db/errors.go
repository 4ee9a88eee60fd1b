package db

import (
	"github.com/pingcap/errors"
)

var (
	ErrConnectionClosed = errors.New("connection is closed")
	ErrStatementClosed  = errors.New("statement is closed")
	ErrResultSetClosed  = errors.New("result set is closed")

	ErrInvalidURL      = errors.New("invalid connection url")
	ErrUnknownScheme   = errors.New("unknown driver scheme")
	ErrMissingUser     = errors.New("missing user parameter")
	ErrMissingPassword = errors.New("missing password parameter")

	ErrNoResultSet = errors.New("statement did not produce a result set")

	ErrNoCurrentRow          = errors.New("cursor is not on a valid row")
	ErrColumnIndexOutOfRange = errors.New("column index out of range")
	ErrParamIndexOutOfRange  = errors.New("parameter index out of range")
	ErrColumnNotFound        = errors.New("column not found")

	ErrTypeConversion = errors.New("unsupported type conversion")

	ErrNotImplemented = errors.New("not implemented")
)
