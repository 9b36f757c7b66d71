package netutil

import (
	"net"
	"time"
)

type keepAliveSetter interface {
	SetKeepAlive(bool) error
	SetKeepAlivePeriod(time.Duration) error
}

// KeepAliveListener enables TCP keep-alives with the given period on every
// accepted connection that supports them. A negative period disables them.
func KeepAliveListener(listener net.Listener, period time.Duration) net.Listener {
	return &keepAliveListener{Listener: listener, period: period}
}

type keepAliveListener struct {
	net.Listener
	period time.Duration
}

func (l *keepAliveListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}

	kc, ok := unwrap(conn).(keepAliveSetter)
	if !ok {
		return conn, nil
	}

	if l.period < 0 {
		kc.SetKeepAlive(false)
		return conn, nil
	}

	kc.SetKeepAlive(true)
	if l.period > 0 {
		kc.SetKeepAlivePeriod(l.period)
	}

	return conn, nil
}

func unwrap(conn net.Conn) net.Conn {
	if c, ok := conn.(*limitListenerConn); ok {
		return c.Conn
	}

	return conn
}
