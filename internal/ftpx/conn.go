// Package ftpx implements the remote side of the picture frame: FTP/FTPS
// sessions, directory listing with capability fallback, recursive image
// enumeration and file download to tracked scratch files.
package ftpx

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/gonzalop/ftp"
	"go.uber.org/zap"

	"github.com/flakysalt/InkyPi/internal/logging"
	"github.com/flakysalt/InkyPi/internal/metrics"
)

// Config describes one FTP server connection. Immutable once a session is
// established; connecting with a new config replaces the old session.
type Config struct {
	Host     string
	Port     int    // default 21
	Username string // default "anonymous"
	Password string
	UseTLS   bool // explicit FTPS (AUTH TLS)
	Passive  bool // passive data connections; active (PORT) when false
	Encoding string // filename charset, default "latin-1"
	Timeout  time.Duration

	// InsecureSkipVerify disables TLS certificate verification. Needed for
	// servers with self-signed certificates.
	InsecureSkipVerify bool
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = 21
	}
	if c.Username == "" {
		c.Username = "anonymous"
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	return c
}

// Addr returns the dial address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Conn is the control-connection surface the session needs. *ftp.Client
// satisfies it through gonzalopConn; tests substitute fakes.
type Conn interface {
	ChangeDir(path string) error
	CurrentDir() (string, error)
	MLList(path string) ([]Fact, error)
	NameList(path string) ([]string, error)
	Retrieve(path string, w io.Writer) error
	HasFeature(name string) bool
	Quit() error
}

// Fact is one raw entry from a rich (MLSD) listing, names still in the
// wire charset.
type Fact struct {
	Name string
	Type string // "file", "dir", "cdir", "pdir"
	Size int64
}

// gonzalopConn adapts *ftp.Client to Conn.
type gonzalopConn struct {
	c *ftp.Client
}

func (g *gonzalopConn) ChangeDir(path string) error       { return g.c.ChangeDir(path) }
func (g *gonzalopConn) CurrentDir() (string, error)       { return g.c.CurrentDir() }
func (g *gonzalopConn) HasFeature(name string) bool       { return g.c.HasFeature(name) }
func (g *gonzalopConn) Quit() error                       { return g.c.Quit() }
func (g *gonzalopConn) NameList(p string) ([]string, error) { return g.c.NameList(p) }

func (g *gonzalopConn) MLList(path string) ([]Fact, error) {
	entries, err := g.c.MLList(path)
	if err != nil {
		return nil, err
	}
	facts := make([]Fact, 0, len(entries))
	for _, e := range entries {
		facts = append(facts, Fact{Name: e.Name, Type: e.Type, Size: e.Size})
	}
	return facts, nil
}

func (g *gonzalopConn) Retrieve(path string, w io.Writer) error {
	return g.c.Retrieve(path, w)
}

// Session wraps one live FTP connection. Not safe for concurrent use; the
// protocol is stateful and never pipelined. Owned by exactly one request.
type Session struct {
	conn   Conn
	codec  *Codec
	lister lister
	host   string
	closed bool
}

// Connect dials, logs in and configures a session per cfg.
func Connect(cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()

	codec, err := NewCodec(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	opts := []ftp.Option{ftp.WithTimeout(cfg.Timeout)}
	if cfg.UseTLS {
		opts = append(opts, ftp.WithExplicitTLS(&tls.Config{
			ServerName:         cfg.Host,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		}))
	}
	if !cfg.Passive {
		opts = append(opts, ftp.WithActiveMode())
	}

	client, err := ftp.Dial(cfg.Addr(), opts...)
	if err != nil {
		metrics.IncConnect("error")
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, cfg.Addr(), err)
	}

	if err := client.Login(cfg.Username, cfg.Password); err != nil {
		metrics.IncConnect("error")
		if qerr := client.Quit(); qerr != nil {
			logging.Warn("closing rejected ftp connection", zap.Error(qerr))
		}
		return nil, fmt.Errorf("%w: login to %s as %s: %v", ErrConnection, cfg.Addr(), cfg.Username, err)
	}

	metrics.IncConnect("ok")
	return NewSession(&gonzalopConn{c: client}, codec, cfg.Host), nil
}

// NewSession builds a session over an established control connection.
// Capability detection happens once here: servers advertising MLST get the
// rich lister, everything else starts on the probe lister.
func NewSession(conn Conn, codec *Codec, host string) *Session {
	s := &Session{conn: conn, codec: codec, host: host}
	if conn.HasFeature("MLST") {
		s.lister = &richLister{}
	} else {
		s.lister = &probeLister{}
	}
	return s
}

// Host returns the server host name for error context.
func (s *Session) Host() string { return s.host }

// Close quits the control connection. Idempotent, never returns an error:
// callers treat teardown as best-effort cleanup.
func (s *Session) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	if err := s.conn.Quit(); err != nil {
		logging.Warn("closing ftp connection", zap.String("host", s.host), zap.Error(err))
	}
}
