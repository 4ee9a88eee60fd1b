package db

// NativeConn is the narrow contract a vendor wire driver must satisfy.
// A NativeConn is stateful and not safe for concurrent use; the owning
// Connection serializes every call with its own lock.
type NativeConn interface {
	// Execute submits SQL text and returns the materialized result.
	// Statements that do not produce rows return a RawResult with nil Columns.
	Execute(sql string) (*RawResult, error)

	// Prepare validates the SQL and returns a server-side prepared statement.
	Prepare(sql string) (NativeStmt, error)

	// Ping verifies the session is alive.
	Ping() error

	// SetCharset forces the session text encoding.
	SetCharset(charset string) error

	// Close releases the underlying session. It must be called exactly once.
	Close() error
}

// NativeStmt is a server-side prepared statement owned by a NativeConn.
type NativeStmt interface {
	ParamCount() int
	ColumnCount() int
	Execute(args []Value) (*RawResult, error)
	Close() error
}

// RawResult is a fully materialized execution result. Columns is nil when the
// statement produced no result set (a zero-row result set still carries its
// column descriptors).
type RawResult struct {
	Columns      []ColumnMetadata
	Rows         [][]Value
	AffectedRows int64
	GeneratedKey uint64
}

// HasResultSet reports whether the statement produced a result set.
func (r *RawResult) HasResultSet() bool {
	return r.Columns != nil
}
