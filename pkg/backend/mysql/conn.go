// Package mysql implements the native connection handle contract on top of
// the go-mysql client library.
package mysql

import (
	"fmt"

	"github.com/dbridge-project/dbridge/pkg/db"
	"github.com/pingcap/errors"
	"github.com/siddontang/go-mysql/client"
)

const (
	// Scheme is the connection URL scheme this backend registers under.
	Scheme = "mysql"

	defaultPort = 3306

	// ParamSSL enables TLS on the wire connection when set to "true".
	ParamSSL = "ssl"
)

func init() {
	db.Register(Scheme, opener{})
}

type opener struct{}

func (opener) DefaultPort() int {
	return defaultPort
}

func (opener) Open(host string, port int, database, user, password string, params map[string]string) (db.NativeConn, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	var options []func(*client.Conn)
	if params[ParamSSL] == "true" {
		options = append(options, func(c *client.Conn) {
			c.UseSSL(true)
		})
	}

	conn, err := client.Connect(addr, user, password, database, options...)
	if err != nil {
		return nil, errors.Annotatef(err, "connect %s", addr)
	}
	return &nativeConn{conn: conn}, nil
}

// nativeConn adapts a go-mysql client connection to the handle contract. It
// is stateful and relies on the owning Connection for serialization.
type nativeConn struct {
	conn *client.Conn
}

func (c *nativeConn) Execute(sql string) (*db.RawResult, error) {
	result, err := c.conn.Execute(sql)
	if err != nil {
		return nil, err
	}
	return convertResult(result), nil
}

func (c *nativeConn) Prepare(sql string) (db.NativeStmt, error) {
	stmt, err := c.conn.Prepare(sql)
	if err != nil {
		return nil, err
	}
	return &nativeStmt{stmt: stmt}, nil
}

func (c *nativeConn) Ping() error {
	return c.conn.Ping()
}

func (c *nativeConn) SetCharset(charset string) error {
	return c.conn.SetCharset(charset)
}

func (c *nativeConn) Close() error {
	return c.conn.Close()
}

type nativeStmt struct {
	stmt *client.Stmt
}

func (s *nativeStmt) ParamCount() int {
	return s.stmt.ParamNum()
}

func (s *nativeStmt) ColumnCount() int {
	return s.stmt.ColumnNum()
}

func (s *nativeStmt) Execute(args []db.Value) (*db.RawResult, error) {
	bound := make([]interface{}, len(args))
	for i, arg := range args {
		bound[i] = arg.Raw()
	}

	result, err := s.stmt.Execute(bound...)
	if err != nil {
		return nil, err
	}
	return convertResult(result), nil
}

func (s *nativeStmt) Close() error {
	return s.stmt.Close()
}
