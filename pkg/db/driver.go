// Package db is a vendor-neutral relational database client layer: a
// Connection/Statement/ResultSet object model with typed column access,
// layered over opaque native connection handles provided by wire drivers.
package db

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/pingcap/errors"
)

const (
	ParamUser     = "user"
	ParamPassword = "password"
)

// Opener creates native connection handles for one driver scheme. A pool
// obtains raw connections through Connect and treats them as opaque.
type Opener interface {
	Open(host string, port int, database, user, password string, params map[string]string) (NativeConn, error)
	DefaultPort() int
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Opener)
)

// Register makes an opener available under the given URL scheme.
func Register(scheme string, opener Opener) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[scheme] = opener
}

func lookupOpener(scheme string) (Opener, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	opener, ok := drivers[scheme]
	return opener, ok
}

type target struct {
	scheme   string
	host     string
	port     int
	database string
}

func parseURL(rawurl string) (*target, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, errors.Annotatef(ErrInvalidURL, "parse %q: %v", rawurl, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Annotatef(ErrInvalidURL, "url %q must be of the form scheme://host[:port]/database", rawurl)
	}

	t := &target{
		scheme:   u.Scheme,
		host:     u.Hostname(),
		database: strings.TrimPrefix(u.Path, "/"),
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Annotatef(ErrInvalidURL, "invalid port %q", p)
		}
		t.port = port
	}
	return t, nil
}

// Connect parses a connection URL of the form scheme://host[:port]/database,
// resolves the registered opener for the scheme and builds a Connection.
// params must carry the user and password keys.
func Connect(rawurl string, params map[string]string) (*Connection, error) {
	t, err := parseURL(rawurl)
	if err != nil {
		return nil, err
	}

	opener, ok := lookupOpener(t.scheme)
	if !ok {
		return nil, errors.Annotatef(ErrUnknownScheme, "scheme %q", t.scheme)
	}

	user, ok := params[ParamUser]
	if !ok {
		return nil, ErrMissingUser
	}
	password, ok := params[ParamPassword]
	if !ok {
		return nil, ErrMissingPassword
	}

	port := t.port
	if port == 0 {
		port = opener.DefaultPort()
	}

	return newConnection(opener, t.host, port, t.database, user, password, params)
}

// BuildURL assembles a connection URL from its parts. A non-positive port is
// omitted so the opener's default applies.
func BuildURL(scheme, host string, port int, database string) string {
	if port > 0 {
		return fmt.Sprintf("%s://%s:%d/%s", scheme, host, port, database)
	}
	return fmt.Sprintf("%s://%s/%s", scheme, host, database)
}

// Credentials builds the minimal parameter mapping Connect requires.
func Credentials(user, password string) map[string]string {
	return map[string]string{
		ParamUser:     user,
		ParamPassword: password,
	}
}
