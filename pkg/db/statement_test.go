package db

import (
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Statement_ExecuteQuery_Success(t *testing.T) {
	fc := newFakeConn()
	fc.results["SELECT name FROM t"] = queryResult([]string{"name"}, [][]Value{
		{StringValue("a")},
		{StringValue("b")},
		{StringValue("c")},
	})
	conn := newTestConnection(t, fc)
	stmt, err := conn.CreateStatement()
	assert.Nil(t, err)

	rs, err := stmt.ExecuteQuery("SELECT name FROM t")
	assert.Nil(t, err)
	assert.NotNil(t, rs)

	meta, err := rs.MetaData()
	assert.Nil(t, err)
	assert.Equal(t, 1, meta.ColumnCount())
}

func Test_Statement_ExecuteQuery_EmptyRowSet_Success(t *testing.T) {
	fc := newFakeConn()
	fc.results["SELECT name FROM t"] = queryResult([]string{"name"}, nil)
	conn := newTestConnection(t, fc)
	stmt, _ := conn.CreateStatement()

	rs, err := stmt.ExecuteQuery("SELECT name FROM t")
	assert.Nil(t, err)

	ok, err := rs.Next()
	assert.Nil(t, err)
	assert.False(t, ok)
}

func Test_Statement_ExecuteQuery_Error_NoResultSet(t *testing.T) {
	fc := newFakeConn()
	// the default scripted result is a command-ok without a result set
	conn := newTestConnection(t, fc)
	stmt, _ := conn.CreateStatement()

	_, err := stmt.ExecuteQuery("SET foo=1")
	assertCause(t, err, ErrNoResultSet)
}

func Test_Statement_ExecuteQuery_Error_ConnectionUsableAfterwards(t *testing.T) {
	fc := newFakeConn()
	fc.errs["SELECT broken"] = errors.New("syntax error")
	fc.results["SELECT 1"] = queryResult([]string{"1"}, [][]Value{{Int64Value(1)}})
	conn := newTestConnection(t, fc)
	stmt, _ := conn.CreateStatement()

	_, err := stmt.ExecuteQuery("SELECT broken")
	assert.NotNil(t, err)

	rs, err := stmt.ExecuteQuery("SELECT 1")
	assert.Nil(t, err)
	assert.NotNil(t, rs)
	assert.False(t, conn.IsClosed())
}

func Test_Statement_ExecuteQuery_ReplacesOpenResultSet(t *testing.T) {
	fc := newFakeConn()
	fc.results["SELECT 1"] = queryResult([]string{"1"}, [][]Value{{Int64Value(1)}})
	conn := newTestConnection(t, fc)
	stmt, _ := conn.CreateStatement()

	first, err := stmt.ExecuteQuery("SELECT 1")
	assert.Nil(t, err)
	second, err := stmt.ExecuteQuery("SELECT 1")
	assert.Nil(t, err)

	_, err = first.Next()
	assertCause(t, err, ErrResultSetClosed)
	_, err = second.Next()
	assert.Nil(t, err)
}

func Test_Statement_ExecuteUpdate_AffectedAndGeneratedKey(t *testing.T) {
	fc := newFakeConn()
	fc.results["UPDATE t SET a=1"] = &RawResult{AffectedRows: 3}
	conn := newTestConnection(t, fc)
	stmt, _ := conn.CreateStatement()

	result, err := stmt.ExecuteUpdate("UPDATE t SET a=1")
	assert.Nil(t, err)
	assert.Equal(t, int64(3), result.AffectedRows)
	assert.Equal(t, uint64(0), result.GeneratedKey)
}

func Test_Statement_Close_CascadesResultSet(t *testing.T) {
	fc := newFakeConn()
	fc.results["SELECT 1"] = queryResult([]string{"1"}, [][]Value{{Int64Value(1)}})
	conn := newTestConnection(t, fc)
	stmt, _ := conn.CreateStatement()

	rs, err := stmt.ExecuteQuery("SELECT 1")
	assert.Nil(t, err)

	assert.Nil(t, stmt.Close())
	_, err = rs.Next()
	assertCause(t, err, ErrResultSetClosed)
}

func Test_Statement_Close_Twice_Error(t *testing.T) {
	fc := newFakeConn()
	conn := newTestConnection(t, fc)
	stmt, _ := conn.CreateStatement()

	assert.Nil(t, stmt.Close())
	assertCause(t, stmt.Close(), ErrStatementClosed)
}

func Test_Statement_Close_UnregistersFromConnection(t *testing.T) {
	fc := newFakeConn()
	conn := newTestConnection(t, fc)
	stmt, _ := conn.CreateStatement()

	assert.Len(t, conn.statements, 1)
	assert.Nil(t, stmt.Close())
	assert.Empty(t, conn.statements)
}

func Test_Statement_Accessors_AfterClose_Error(t *testing.T) {
	fc := newFakeConn()
	conn := newTestConnection(t, fc)
	stmt, _ := conn.CreateStatement()
	assert.Nil(t, stmt.Close())

	_, err := stmt.Connection()
	assertCause(t, err, ErrStatementClosed)
	_, err = stmt.ExecuteQuery("SELECT 1")
	assertCause(t, err, ErrStatementClosed)
	_, err = stmt.ExecuteUpdate("UPDATE t SET a=1")
	assertCause(t, err, ErrStatementClosed)
}

func Test_Statement_Connection_ReturnsOwner(t *testing.T) {
	fc := newFakeConn()
	conn := newTestConnection(t, fc)
	stmt, _ := conn.CreateStatement()

	owner, err := stmt.Connection()
	assert.Nil(t, err)
	assert.Equal(t, conn, owner)
}
