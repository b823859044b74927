package core

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

const writeTimeout = 5 * time.Second

// Session is the server-side state for one connected client. The stream is
// exclusively owned: only the session's own handler ever reads from it, and
// all writes (prompts from the handler, fan-out from the broadcast engine)
// go through Send, serialized by the session's write lock.
type Session struct {
	ID string

	wmu  sync.Mutex
	conn io.ReadWriteCloser

	umu      sync.Mutex
	username string
}

func NewSession(conn io.ReadWriteCloser) *Session {
	return &Session{
		ID:   uuid.NewString(),
		conn: conn,
	}
}

// Stream exposes the raw stream to the owning handler for reading.
// Nothing else may read from it.
func (s *Session) Stream() io.Reader { return s.conn }

// Send writes text to the client. A write deadline bounds a stuck peer so a
// broadcast never hangs the registry forever.
func (s *Session) Send(text string) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if c, ok := s.conn.(net.Conn); ok {
		if err := c.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(s.conn, text)
	return err
}

// BindIdentity records the authenticated username. Called once by the owning
// handler after a successful login; the identity never changes afterwards.
func (s *Session) BindIdentity(username string) {
	s.umu.Lock()
	s.username = username
	s.umu.Unlock()
}

// Username returns the bound identity, or "" before authentication.
func (s *Session) Username() string {
	s.umu.Lock()
	defer s.umu.Unlock()
	return s.username
}

func (s *Session) Close() error {
	return s.conn.Close()
}
