package db

import (
	"time"

	"github.com/dbridge-project/dbridge/pkg/metrics"
	"github.com/opentracing/opentracing-go"
	"github.com/pingcap/errors"
)

const preparedDateTimeLayout = "2006-01-02 15:04:05.999999"

// PreparedStatement binds positional parameters to an immutable SQL template
// prepared on the native handle. Parameter indexes are 1-based.
type PreparedStatement struct {
	Statement

	sql        string
	paramCount int
	params     []Value

	// metadata descriptors are computed once from the prepare-time headers
	// and reused across executions.
	metaData  *ResultSetMetaData
	paramMeta *ParameterMetaData
}

func newPreparedStatement(conn *Connection, sql string, native NativeStmt) *PreparedStatement {
	return &PreparedStatement{
		Statement: Statement{
			conn:   conn,
			native: native,
		},
		sql:        sql,
		paramCount: native.ParamCount(),
		params:     make([]Value, native.ParamCount()),
	}
}

// SQL returns the statement template.
func (p *PreparedStatement) SQL() (string, error) {
	if p.closed.Get() {
		return "", ErrStatementClosed
	}
	return p.sql, nil
}

func (p *PreparedStatement) bind(index int, value Value) error {
	if p.closed.Get() {
		return ErrStatementClosed
	}

	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()

	// recheck under the lock: a concurrent connection close may have cascaded
	// to this statement after the caller's fast-path check.
	if p.closed.Get() {
		return ErrStatementClosed
	}

	if index < 1 || index > p.paramCount {
		return errors.Annotatef(ErrParamIndexOutOfRange, "index %d, parameter count %d", index, p.paramCount)
	}
	p.params[index-1] = value
	return nil
}

func (p *PreparedStatement) SetNull(index int) error {
	return p.bind(index, NullValue())
}

func (p *PreparedStatement) SetBool(index int, value bool) error {
	v := int64(0)
	if value {
		v = 1
	}
	return p.bind(index, Int64Value(v))
}

func (p *PreparedStatement) SetInt64(index int, value int64) error {
	return p.bind(index, Int64Value(value))
}

func (p *PreparedStatement) SetUint64(index int, value uint64) error {
	return p.bind(index, Uint64Value(value))
}

func (p *PreparedStatement) SetFloat64(index int, value float64) error {
	return p.bind(index, Float64Value(value))
}

func (p *PreparedStatement) SetBytes(index int, value []byte) error {
	return p.bind(index, BytesValue(value))
}

func (p *PreparedStatement) SetString(index int, value string) error {
	return p.bind(index, StringValue(value))
}

// SetTime binds a temporal value as a datetime literal.
func (p *PreparedStatement) SetTime(index int, value time.Time) error {
	return p.bind(index, StringValue(value.Format(preparedDateTimeLayout)))
}

// ClearParameters resets every position to null.
func (p *PreparedStatement) ClearParameters() error {
	if p.closed.Get() {
		return ErrStatementClosed
	}

	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()

	if p.closed.Get() {
		return ErrStatementClosed
	}

	for i := range p.params {
		p.params[i] = Value{}
	}
	return nil
}

// ExecuteQuery binds the recorded parameters and runs the prepared query,
// returning a cursor over the materialized result.
func (p *PreparedStatement) ExecuteQuery() (*ResultSet, error) {
	if p.closed.Get() {
		return nil, ErrStatementClosed
	}

	span := opentracing.StartSpan("db.preparedExecuteQuery")
	defer span.Finish()

	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()

	raw, err := p.executePreparedLocked()
	if err != nil {
		return nil, err
	}
	return p.wrapResultLocked(raw, p.sql)
}

// ExecuteUpdate binds the recorded parameters and runs the prepared
// statement, returning the affected-row count and generated key.
func (p *PreparedStatement) ExecuteUpdate() (*UpdateResult, error) {
	if p.closed.Get() {
		return nil, ErrStatementClosed
	}

	span := opentracing.StartSpan("db.preparedExecuteUpdate")
	defer span.Finish()

	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()

	raw, err := p.executePreparedLocked()
	if err != nil {
		return nil, err
	}
	return &UpdateResult{
		AffectedRows: raw.AffectedRows,
		GeneratedKey: raw.GeneratedKey,
	}, nil
}

func (p *PreparedStatement) executePreparedLocked() (*RawResult, error) {
	if p.closed.Get() {
		return nil, ErrStatementClosed
	}

	args := make([]Value, len(p.params))
	copy(args, p.params)

	start := time.Now()
	raw, err := p.native.Execute(args)
	metrics.ExecuteDurationHistogram.WithLabelValues(metrics.TypePrepare).Observe(time.Since(start).Seconds())
	metrics.ExecuteTotalCounter.WithLabelValues(metrics.TypePrepare, metrics.RetLabel(err)).Inc()
	if err != nil {
		return nil, errors.Annotatef(err, "execute prepared %q", p.sql)
	}
	return raw, nil
}

// MetaData describes the projected columns. Before the first execution the
// server only reports the column count, so the descriptors carry synthesized
// attributes.
func (p *PreparedStatement) MetaData() (*ResultSetMetaData, error) {
	if p.closed.Get() {
		return nil, ErrStatementClosed
	}

	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()

	if p.metaData == nil {
		columns := make([]ColumnMetadata, p.native.ColumnCount())
		p.metaData = NewResultSetMetaData(columns)
	}
	return p.metaData, nil
}

// ParameterMetaData describes the declared parameters.
func (p *PreparedStatement) ParameterMetaData() (*ParameterMetaData, error) {
	if p.closed.Get() {
		return nil, ErrStatementClosed
	}

	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()

	if p.paramMeta == nil {
		p.paramMeta = NewParameterMetaData(p.paramCount)
	}
	return p.paramMeta, nil
}
