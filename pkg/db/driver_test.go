package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParseURL_HostPortDatabase(t *testing.T) {
	target, err := parseURL("fake://127.0.0.1:4500/testdb")
	assert.Nil(t, err)
	assert.Equal(t, "fake", target.scheme)
	assert.Equal(t, "127.0.0.1", target.host)
	assert.Equal(t, 4500, target.port)
	assert.Equal(t, "testdb", target.database)
}

func Test_ParseURL_PortOmitted(t *testing.T) {
	target, err := parseURL("fake://dbhost/testdb")
	assert.Nil(t, err)
	assert.Equal(t, "dbhost", target.host)
	assert.Equal(t, 0, target.port)
}

func Test_ParseURL_Error_NoScheme(t *testing.T) {
	_, err := parseURL("dbhost/testdb")
	assertCause(t, err, ErrInvalidURL)
}

func Test_ParseURL_Error_NoHost(t *testing.T) {
	_, err := parseURL("fake:///testdb")
	assertCause(t, err, ErrInvalidURL)
}

func Test_Connect_UsesRegisteredOpener(t *testing.T) {
	opener := &fakeOpener{conn: newFakeConn()}
	Register("fake", opener)

	conn, err := Connect("fake://dbhost:4500/testdb", Credentials("user0", "pwd0"))
	assert.Nil(t, err)
	assert.NotNil(t, conn)
	assert.Equal(t, "dbhost", opener.host)
	assert.Equal(t, 4500, opener.port)
	assert.Equal(t, "testdb", opener.database)
	assert.Equal(t, "user0", opener.user)
	assert.Equal(t, "pwd0", opener.password)
}

func Test_Connect_DefaultPortApplied(t *testing.T) {
	opener := &fakeOpener{conn: newFakeConn()}
	Register("fake", opener)

	_, err := Connect("fake://dbhost/testdb", Credentials("user0", "pwd0"))
	assert.Nil(t, err)
	assert.Equal(t, 4000, opener.port)
}

func Test_Connect_Error_UnknownScheme(t *testing.T) {
	_, err := Connect("unregistered://dbhost/testdb", Credentials("user0", "pwd0"))
	assertCause(t, err, ErrUnknownScheme)
}

func Test_Connect_Error_MissingCredentials(t *testing.T) {
	opener := &fakeOpener{conn: newFakeConn()}
	Register("fake", opener)

	_, err := Connect("fake://dbhost/testdb", map[string]string{"password": "pwd0"})
	assertCause(t, err, ErrMissingUser)

	_, err = Connect("fake://dbhost/testdb", map[string]string{"user": "user0"})
	assertCause(t, err, ErrMissingPassword)
}

func Test_Connect_Error_OpenFailurePropagates(t *testing.T) {
	opener := &fakeOpener{conn: newFakeConn(), openErr: assert.AnError}
	Register("fake", opener)

	_, err := Connect("fake://dbhost/testdb", Credentials("user0", "pwd0"))
	assert.NotNil(t, err)
}

func Test_BuildURL(t *testing.T) {
	assert.Equal(t, "mysql://dbhost:3306/testdb", BuildURL("mysql", "dbhost", 3306, "testdb"))
	assert.Equal(t, "mysql://dbhost/testdb", BuildURL("mysql", "dbhost", 0, "testdb"))
}

func Test_Credentials(t *testing.T) {
	params := Credentials("user0", "pwd0")
	assert.Equal(t, "user0", params[ParamUser])
	assert.Equal(t, "pwd0", params[ParamPassword])
}
