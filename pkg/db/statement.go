package db

import (
	"time"

	"github.com/dbridge-project/dbridge/pkg/metrics"
	"github.com/opentracing/opentracing-go"
	"github.com/pingcap/errors"
	"github.com/siddontang/go/sync2"
)

// UpdateResult carries the outcome of a data-modifying statement.
// GeneratedKey is the server-reported identifier of the affected row, zero
// when not applicable.
type UpdateResult struct {
	AffectedRows int64
	GeneratedKey uint64
}

// Statement executes ad-hoc SQL text against its owning Connection. It owns
// at most one open ResultSet at a time. The Connection is a back-reference
// only, used for locking and the lifecycle callback.
type Statement struct {
	conn   *Connection
	rs     *ResultSet
	native NativeStmt // non-nil for prepared statements
	closed sync2.AtomicBool
}

func newStatement(conn *Connection) *Statement {
	return &Statement{conn: conn}
}

// ExecuteQuery submits SQL and returns a cursor over the fully materialized
// result. A statement that produces no result set fails with ErrNoResultSet;
// an empty row set is still a result set.
func (s *Statement) ExecuteQuery(sql string) (*ResultSet, error) {
	if s.closed.Get() {
		return nil, ErrStatementClosed
	}

	span := opentracing.StartSpan("db.executeQuery")
	defer span.Finish()

	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()

	raw, err := s.submitLocked(sql, metrics.TypeQuery)
	if err != nil {
		return nil, err
	}
	return s.wrapResultLocked(raw, sql)
}

// ExecuteUpdate submits SQL and returns the affected-row count and generated
// key. Both command-ok and rows-returning statuses count as success.
func (s *Statement) ExecuteUpdate(sql string) (*UpdateResult, error) {
	if s.closed.Get() {
		return nil, ErrStatementClosed
	}

	span := opentracing.StartSpan("db.executeUpdate")
	defer span.Finish()

	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()

	return s.executeUpdateLocked(sql)
}

// Close releases the statement, cascading to its open ResultSet, and
// unregisters it from the owning Connection.
func (s *Statement) Close() error {
	if s.closed.Get() {
		return ErrStatementClosed
	}

	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()

	return s.closeLocked()
}

func (s *Statement) IsClosed() bool {
	return s.closed.Get()
}

// Connection returns the owning connection.
func (s *Statement) Connection() (*Connection, error) {
	if s.closed.Get() {
		return nil, ErrStatementClosed
	}
	return s.conn, nil
}

func (s *Statement) submitLocked(sql string, opType string) (*RawResult, error) {
	// recheck under the lock: a concurrent connection close may have
	// cascaded to this statement after the caller's fast-path check
	if s.closed.Get() {
		return nil, ErrStatementClosed
	}

	start := time.Now()
	raw, err := s.conn.handle.Execute(sql)
	metrics.ExecuteDurationHistogram.WithLabelValues(opType).Observe(time.Since(start).Seconds())
	metrics.ExecuteTotalCounter.WithLabelValues(opType, metrics.RetLabel(err)).Inc()
	if err != nil {
		return nil, errors.Annotatef(err, "execute %q", sql)
	}
	return raw, nil
}

func (s *Statement) executeUpdateLocked(sql string) (*UpdateResult, error) {
	raw, err := s.submitLocked(sql, metrics.TypeUpdate)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{
		AffectedRows: raw.AffectedRows,
		GeneratedKey: raw.GeneratedKey,
	}, nil
}

// wrapResultLocked turns a raw result into the statement's current ResultSet,
// closing the previous one since a statement owns at most one.
func (s *Statement) wrapResultLocked(raw *RawResult, sql string) (*ResultSet, error) {
	if !raw.HasResultSet() {
		return nil, errors.Annotatef(ErrNoResultSet, "sql %q", sql)
	}

	if s.rs != nil {
		s.rs.closeLocked()
	}

	rs := newResultSet(s, raw.Columns, raw.Rows)
	s.rs = rs
	return rs, nil
}

func (s *Statement) closeLocked() error {
	if s.closed.Get() {
		return ErrStatementClosed
	}

	if s.rs != nil {
		s.rs.closeLocked()
	}

	var err error
	if s.native != nil {
		err = s.native.Close()
	}

	s.closed.Set(true)
	s.conn.removeStatementLocked(s)
	if err != nil {
		return errors.Annotate(err, "close prepared statement handle")
	}
	return nil
}
