package db

import (
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
)

// fakeConn scripts the native handle contract for tests. Execute returns the
// scripted result for a SQL text, an empty command-ok result otherwise.
type fakeConn struct {
	results  map[string]*RawResult
	errs     map[string]error
	executed []string

	pingErr    error
	prepareErr error
	closeErr   error

	charsets   []string
	closeCount int

	stmts map[string]*fakeStmt
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		results: make(map[string]*RawResult),
		errs:    make(map[string]error),
		stmts:   make(map[string]*fakeStmt),
	}
}

func (c *fakeConn) Execute(sql string) (*RawResult, error) {
	c.executed = append(c.executed, sql)
	if err, ok := c.errs[sql]; ok {
		return nil, err
	}
	if result, ok := c.results[sql]; ok {
		return result, nil
	}
	return &RawResult{}, nil
}

func (c *fakeConn) Prepare(sql string) (NativeStmt, error) {
	if c.prepareErr != nil {
		return nil, c.prepareErr
	}
	stmt, ok := c.stmts[sql]
	if !ok {
		stmt = &fakeStmt{result: &RawResult{}}
		c.stmts[sql] = stmt
	}
	return stmt, nil
}

func (c *fakeConn) Ping() error {
	return c.pingErr
}

func (c *fakeConn) SetCharset(charset string) error {
	c.charsets = append(c.charsets, charset)
	return nil
}

func (c *fakeConn) Close() error {
	c.closeCount++
	return c.closeErr
}

func (c *fakeConn) didExecute(sql string) bool {
	for _, executed := range c.executed {
		if executed == sql {
			return true
		}
	}
	return false
}

type fakeStmt struct {
	paramCount  int
	columnCount int

	result  *RawResult
	execErr error

	boundArgs  [][]Value
	closeCount int
}

func (s *fakeStmt) ParamCount() int {
	return s.paramCount
}

func (s *fakeStmt) ColumnCount() int {
	return s.columnCount
}

func (s *fakeStmt) Execute(args []Value) (*RawResult, error) {
	s.boundArgs = append(s.boundArgs, args)
	if s.execErr != nil {
		return nil, s.execErr
	}
	return s.result, nil
}

func (s *fakeStmt) Close() error {
	s.closeCount++
	return nil
}

type fakeOpener struct {
	conn    *fakeConn
	openErr error

	host     string
	port     int
	database string
	user     string
	password string
}

func (o *fakeOpener) Open(host string, port int, database, user, password string, params map[string]string) (NativeConn, error) {
	o.host = host
	o.port = port
	o.database = database
	o.user = user
	o.password = password
	if o.openErr != nil {
		return nil, o.openErr
	}
	return o.conn, nil
}

func (o *fakeOpener) DefaultPort() int {
	return 4000
}

func newTestConnection(t *testing.T, fc *fakeConn) *Connection {
	conn, err := newConnection(&fakeOpener{conn: fc}, "127.0.0.1", 4000, "testdb", "user0", "pwd0", nil)
	assert.Nil(t, err)
	return conn
}

// queryResult builds a materialized result with the given column labels.
func queryResult(columns []string, rows [][]Value) *RawResult {
	metadata := make([]ColumnMetadata, 0, len(columns))
	for _, name := range columns {
		metadata = append(metadata, ColumnMetadata{Name: name, Label: name})
	}
	return &RawResult{Columns: metadata, Rows: rows}
}

func assertCause(t *testing.T, err error, target error) {
	assert.NotNil(t, err)
	assert.EqualError(t, errors.Cause(err), target.Error())
}
