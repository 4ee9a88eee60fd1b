package db

import (
	"sync"

	"github.com/dbridge-project/dbridge/pkg/metrics"
	"github.com/dbridge-project/dbridge/pkg/util/logutil"
	"github.com/pingcap/errors"
	"github.com/siddontang/go/sync2"
	"go.uber.org/zap"
)

const (
	// DefaultCharset is forced on every new session so text payloads decode
	// predictably regardless of server defaults.
	DefaultCharset = "utf8mb4"

	// ParamCharset overrides the session charset in the connect parameters.
	ParamCharset = "charset"
)

// Connection owns exactly one native connection handle and the set of
// Statements created from it. A single mutex serializes every operation that
// touches the handle, including operations issued through derived Statements
// and ResultSets; the handle itself is not safe for concurrent use.
type Connection struct {
	mu     sync.Mutex
	handle NativeConn

	host     string
	port     int
	database string
	user     string

	closed     sync2.AtomicBool
	autoCommit sync2.AtomicBool

	// statements holds the currently open statements in creation order.
	// Guarded by mu.
	statements []*Statement
}

func newConnection(opener Opener, host string, port int, database, user, password string, params map[string]string) (*Connection, error) {
	handle, err := opener.Open(host, port, database, user, password, params)
	if err != nil {
		return nil, errors.Annotatef(err, "open connection to %s:%d/%s", host, port, database)
	}

	c := &Connection{
		handle:   handle,
		host:     host,
		port:     port,
		database: database,
		user:     user,
	}
	c.autoCommit.Set(true)

	if err := c.initSession(params); err != nil {
		if errClose := handle.Close(); errClose != nil {
			logutil.BgLogger().Error("release handle after failed session init",
				zap.String("host", host), zap.Error(errClose))
		}
		return nil, err
	}

	metrics.ConnGauge.Inc()
	return c, nil
}

func (c *Connection) initSession(params map[string]string) error {
	if err := c.handle.Ping(); err != nil {
		return errors.Annotate(err, "connection status check")
	}

	charset := params[ParamCharset]
	if charset == "" {
		charset = DefaultCharset
	}
	if err := c.handle.SetCharset(charset); err != nil {
		return errors.Annotatef(err, "set session charset %s", charset)
	}
	return nil
}

// CreateStatement builds a Statement for ad-hoc SQL and registers it in the
// connection's owned set.
func (c *Connection) CreateStatement() (*Statement, error) {
	if c.closed.Get() {
		return nil, ErrConnectionClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// recheck under the lock: a concurrent Close may have completed after the
	// fast-path check, and a statement must never register on a closed
	// connection.
	if c.closed.Get() {
		return nil, ErrConnectionClosed
	}

	stmt := newStatement(c)
	c.statements = append(c.statements, stmt)
	return stmt, nil
}

// PrepareStatement validates the SQL against the handle and builds a
// PreparedStatement with the declared parameter count.
func (c *Connection) PrepareStatement(sql string) (*PreparedStatement, error) {
	if c.closed.Get() {
		return nil, ErrConnectionClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// recheck under the lock so Prepare never reaches a released handle.
	if c.closed.Get() {
		return nil, ErrConnectionClosed
	}

	native, err := c.handle.Prepare(sql)
	if err != nil {
		return nil, errors.Annotatef(err, "prepare statement %q", sql)
	}

	stmt := newPreparedStatement(c, sql, native)
	c.statements = append(c.statements, &stmt.Statement)
	return stmt, nil
}

// Commit commits the current transaction through an internal statement.
func (c *Connection) Commit() error {
	return c.execControl("COMMIT")
}

// Rollback rolls back the current transaction through an internal statement.
func (c *Connection) Rollback() error {
	return c.execControl("ROLLBACK")
}

// SetAutoCommit mirrors the auto-commit mode as a session variable on the
// server side. Requesting the current mode is a no-op.
func (c *Connection) SetAutoCommit(autoCommit bool) error {
	if c.closed.Get() {
		return ErrConnectionClosed
	}
	if c.autoCommit.Get() == autoCommit {
		return nil
	}

	command := "SET autocommit=0"
	if autoCommit {
		command = "SET autocommit=1"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.execControlLocked(command); err != nil {
		return err
	}
	c.autoCommit.Set(autoCommit)
	return nil
}

// SetCatalog is not supported: switching the active database requires session
// re-establishment in the underlying protocol.
func (c *Connection) SetCatalog(name string) error {
	if c.closed.Get() {
		return ErrConnectionClosed
	}
	return errors.Annotate(ErrNotImplemented, "catalog switch")
}

// Close closes every owned statement, releases the native handle and marks
// the connection closed. A second Close fails with ErrConnectionClosed.
func (c *Connection) Close() error {
	if c.closed.Get() {
		return ErrConnectionClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Get() {
		return ErrConnectionClosed
	}

	// Each statement close unregisters itself from c.statements, so iterate a
	// defensive copy.
	snapshot := make([]*Statement, len(c.statements))
	copy(snapshot, c.statements)
	for _, stmt := range snapshot {
		if err := stmt.closeLocked(); err != nil {
			logutil.BgLogger().Error("close statement on connection close",
				zap.String("database", c.database), zap.Error(err))
		}
	}

	err := c.handle.Close()
	c.closed.Set(true)
	metrics.ConnGauge.Dec()
	if err != nil {
		return errors.Annotate(err, "release native connection")
	}
	return nil
}

func (c *Connection) IsClosed() bool {
	return c.closed.Get()
}

func (c *Connection) AutoCommit() bool {
	return c.autoCommit.Get()
}

// Catalog returns the database name the connection was opened against.
func (c *Connection) Catalog() string {
	return c.database
}

func (c *Connection) User() string {
	return c.user
}

func (c *Connection) execControl(command string) error {
	if c.closed.Get() {
		return ErrConnectionClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.execControlLocked(command)
}

// execControlLocked runs a control command through a transient internal
// statement. Callers must hold c.mu.
func (c *Connection) execControlLocked(command string) error {
	if c.closed.Get() {
		return ErrConnectionClosed
	}

	stmt := newStatement(c)
	c.statements = append(c.statements, stmt)
	_, err := stmt.executeUpdateLocked(command)
	if errClose := stmt.closeLocked(); errClose != nil {
		logutil.BgLogger().Error("close internal statement",
			zap.String("command", command), zap.Error(errClose))
	}
	return err
}

// removeStatementLocked drops stmt from the owned set. Callers must hold c.mu.
func (c *Connection) removeStatementLocked(stmt *Statement) {
	for i, s := range c.statements {
		if s == stmt {
			c.statements = append(c.statements[:i], c.statements[i+1:]...)
			return
		}
	}
}
