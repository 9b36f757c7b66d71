package netutil

import (
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Limiter is a pool of connection slots shared by several listeners
type Limiter struct {
	sem                  chan struct{}
	concurrentConnsCount prometheus.Gauge
	waitingConnsCount    prometheus.Gauge
}

// NewLimiterWithMetrics creates a Limiter allowing n concurrent connections
func NewLimiterWithMetrics(n int, maxConnsCount, concurrentConnsCount, waitingConnsCount prometheus.Gauge) *Limiter {
	maxConnsCount.Set(float64(n))

	return &Limiter{
		sem:                  make(chan struct{}, n),
		concurrentConnsCount: concurrentConnsCount,
		waitingConnsCount:    waitingConnsCount,
	}
}

// Listen returns a Listener that only accepts a connection from listener
// while the shared pool has a free slot. Based on
// https://godoc.org/golang.org/x/net/netutil
func (l *Limiter) Listen(listener net.Listener) net.Listener {
	return &limitListener{
		Listener: listener,
		limiter:  l,
		done:     make(chan struct{}),
	}
}

func (l *Limiter) release() {
	<-l.sem
	l.concurrentConnsCount.Dec()
}

type limitListener struct {
	net.Listener
	closeOnce sync.Once
	limiter   *Limiter
	done      chan struct{} // closed when Close is called
}

// acquire returns false if the listener was closed while waiting for a slot
func (l *limitListener) acquire() bool {
	l.limiter.waitingConnsCount.Inc()
	defer l.limiter.waitingConnsCount.Dec()

	select {
	case <-l.done:
		return false
	case l.limiter.sem <- struct{}{}:
		l.limiter.concurrentConnsCount.Inc()
		return true
	}
}

func (l *limitListener) Accept() (net.Conn, error) {
	acquired := l.acquire()

	// A closed listener returns an error straight away
	c, err := l.Listener.Accept()
	if err != nil {
		if acquired {
			l.limiter.release()
		}
		return nil, err
	}

	return &limitListenerConn{Conn: c, release: l.limiter.release}, nil
}

func (l *limitListener) Close() error {
	err := l.Listener.Close()
	l.closeOnce.Do(func() { close(l.done) })
	return err
}

type limitListenerConn struct {
	net.Conn
	releaseOnce sync.Once
	release     func()
}

func (c *limitListenerConn) Close() error {
	err := c.Conn.Close()
	c.releaseOnce.Do(c.release)
	return err
}
