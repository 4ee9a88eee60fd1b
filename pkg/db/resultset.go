package db

import (
	"time"

	"github.com/pingcap/errors"
)

// ResultSet is a forward/positional cursor over a fully materialized row set.
// The cursor starts before the first row. Every operation, including pure
// reads, holds the owning Connection's lock: cell values and metadata are not
// safe to read concurrently with other operations on the same connection.
type ResultSet struct {
	stmt *Statement
	meta *ResultSetMetaData
	rows [][]Value

	// pos is the zero-based cursor: -1 before first, len(rows) after last.
	pos      int
	wasNull  bool
	colIndex map[string]int
	closed   bool
}

func newResultSet(stmt *Statement, columns []ColumnMetadata, rows [][]Value) *ResultSet {
	colIndex := make(map[string]int, len(columns))
	for i, col := range columns {
		name := col.Label
		if name == "" {
			name = col.Name
		}
		if _, ok := colIndex[name]; !ok {
			colIndex[name] = i
		}
	}

	return &ResultSet{
		stmt:     stmt,
		meta:     NewResultSetMetaData(columns),
		rows:     rows,
		pos:      -1,
		colIndex: colIndex,
	}
}

func (rs *ResultSet) lock() { rs.stmt.conn.mu.Lock() }

func (rs *ResultSet) unlock() { rs.stmt.conn.mu.Unlock() }

// Next advances the cursor by one row and reports whether the new position is
// valid.
func (rs *ResultSet) Next() (bool, error) {
	rs.lock()
	defer rs.unlock()

	if rs.closed {
		return false, ErrResultSetClosed
	}
	if rs.pos < len(rs.rows) {
		rs.pos++
	}
	return rs.pos < len(rs.rows), nil
}

// First positions the cursor on the first row, if any.
func (rs *ResultSet) First() (bool, error) {
	rs.lock()
	defer rs.unlock()

	if rs.closed {
		return false, ErrResultSetClosed
	}
	if len(rs.rows) == 0 {
		return false, nil
	}
	rs.pos = 0
	return true, nil
}

func (rs *ResultSet) IsFirst() (bool, error) {
	rs.lock()
	defer rs.unlock()

	if rs.closed {
		return false, ErrResultSetClosed
	}
	return len(rs.rows) > 0 && rs.pos == 0, nil
}

func (rs *ResultSet) IsLast() (bool, error) {
	rs.lock()
	defer rs.unlock()

	if rs.closed {
		return false, ErrResultSetClosed
	}
	return len(rs.rows) > 0 && rs.pos == len(rs.rows)-1, nil
}

// Row returns the 1-based number of the current row, or 0 when the cursor is
// before the first or after the last row.
func (rs *ResultSet) Row() (int, error) {
	rs.lock()
	defer rs.unlock()

	if rs.closed {
		return 0, ErrResultSetClosed
	}
	if rs.pos < 0 || rs.pos >= len(rs.rows) {
		return 0, nil
	}
	return rs.pos + 1, nil
}

// WasNull reports whether the most recently read cell was null.
func (rs *ResultSet) WasNull() (bool, error) {
	rs.lock()
	defer rs.unlock()

	if rs.closed {
		return false, ErrResultSetClosed
	}
	return rs.wasNull, nil
}

// FindColumn resolves a column name to its 1-based index. The lookup is
// case-sensitive.
func (rs *ResultSet) FindColumn(name string) (int, error) {
	rs.lock()
	defer rs.unlock()

	if rs.closed {
		return 0, ErrResultSetClosed
	}
	idx, ok := rs.colIndex[name]
	if !ok {
		return 0, errors.Annotatef(ErrColumnNotFound, "column %q", name)
	}
	return idx + 1, nil
}

// MetaData returns the column descriptors built at execution time.
func (rs *ResultSet) MetaData() (*ResultSetMetaData, error) {
	rs.lock()
	defer rs.unlock()

	if rs.closed {
		return nil, ErrResultSetClosed
	}
	return rs.meta, nil
}

// Close releases the cursor. A second Close fails with ErrResultSetClosed.
func (rs *ResultSet) Close() error {
	rs.lock()
	defer rs.unlock()

	if rs.closed {
		return ErrResultSetClosed
	}
	rs.closeLocked()
	return nil
}

func (rs *ResultSet) closeLocked() {
	if rs.closed {
		return
	}
	rs.closed = true
	if rs.stmt.rs == rs {
		rs.stmt.rs = nil
	}
}

// cell fetches the current cell for the 1-based column index, validating both
// the cursor position and the index.
func (rs *ResultSet) cell(index int) (Value, error) {
	if rs.pos < 0 || rs.pos >= len(rs.rows) {
		return Value{}, errors.Annotatef(ErrNoCurrentRow, "position %d, row count %d", rs.pos, len(rs.rows))
	}
	if index < 1 || index > rs.meta.ColumnCount() {
		return Value{}, errors.Annotatef(ErrColumnIndexOutOfRange, "index %d, column count %d", index, rs.meta.ColumnCount())
	}
	return rs.rows[rs.pos][index-1], nil
}

// read runs one typed access: position/index validation, the null
// short-circuit, then the conversion chain. conv must leave the target's
// zero value behind on failure.
func (rs *ResultSet) read(index int, conv func(Value) error) error {
	rs.lock()
	defer rs.unlock()

	if rs.closed {
		return ErrResultSetClosed
	}
	v, err := rs.cell(index)
	if err != nil {
		return err
	}
	if v.IsNull() {
		rs.wasNull = true
		return nil
	}
	rs.wasNull = false
	if err := conv(v); err != nil {
		return errors.Annotatef(err, "column %d", index)
	}
	return nil
}

func (rs *ResultSet) GetBool(index int) (bool, error) {
	var out bool
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsBool()
		return
	})
	return out, err
}

func (rs *ResultSet) GetInt8(index int) (int8, error) {
	var out int8
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsInt8()
		return
	})
	return out, err
}

func (rs *ResultSet) GetInt16(index int) (int16, error) {
	var out int16
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsInt16()
		return
	})
	return out, err
}

func (rs *ResultSet) GetInt32(index int) (int32, error) {
	var out int32
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsInt32()
		return
	})
	return out, err
}

func (rs *ResultSet) GetInt64(index int) (int64, error) {
	var out int64
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsInt64()
		return
	})
	return out, err
}

func (rs *ResultSet) GetUint64(index int) (uint64, error) {
	var out uint64
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsUint64()
		return
	})
	return out, err
}

func (rs *ResultSet) GetFloat32(index int) (float32, error) {
	var out float32
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsFloat32()
		return
	})
	return out, err
}

func (rs *ResultSet) GetFloat64(index int) (float64, error) {
	var out float64
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsFloat64()
		return
	})
	return out, err
}

func (rs *ResultSet) GetBytes(index int) ([]byte, error) {
	var out []byte
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsBytes()
		return
	})
	return out, err
}

func (rs *ResultSet) GetString(index int) (string, error) {
	var out string
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsString()
		return
	})
	return out, err
}

func (rs *ResultSet) GetDate(index int) (time.Time, error) {
	var out time.Time
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsDate()
		return
	})
	return out, err
}

func (rs *ResultSet) GetTime(index int) (time.Time, error) {
	var out time.Time
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsTime()
		return
	})
	return out, err
}

func (rs *ResultSet) GetDateTime(index int) (time.Time, error) {
	var out time.Time
	err := rs.read(index, func(v Value) (convErr error) {
		out, convErr = v.AsDateTime()
		return
	})
	return out, err
}

// GetValue returns the cell's raw dynamically-typed value.
func (rs *ResultSet) GetValue(index int) (interface{}, error) {
	var out interface{}
	err := rs.read(index, func(v Value) error {
		out = v.Raw()
		return nil
	})
	return out, err
}
