package transport

import (
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"
)

// tcpTransport wraps a net.Conn (plain or already-TLS) and approximates
// the non-blocking Read/Write contract with a near-zero deadline, then
// performs the STARTTLS upgrade asynchronously in a goroutine.
type tcpTransport struct {
	conn net.Conn

	mu          sync.Mutex
	upgrading   bool
	upgradeDone bool
	upgradeErr  error
	tlsConfig   *tls.Config
}

// DialTCP opens a plain TCP connection to addr ("host:port").
func DialTCP(addr string, timeout time.Duration) (Transport, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return &tcpTransport{conn: conn}, nil
}

// DialTLS opens a TCP connection and immediately performs a synchronous
// TLS handshake, for imaps:// (implicit TLS) URLs. Opportunistic STARTTLS
// uses DialTCP followed by Upgrade instead.
func DialTLS(addr, serverName string, timeout time.Duration) (Transport, error) {
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: serverName})
	if err != nil {
		return nil, fmt.Errorf("transport: tls dial %s: %w", addr, err)
	}
	return &tcpTransport{conn: conn, upgradeDone: true}, nil
}

func (t *tcpTransport) activeConn() net.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

func (t *tcpTransport) Read(p []byte) (int, error) {
	conn := t.activeConn()
	_ = conn.SetReadDeadline(time.Now().Add(pollDeadline))
	n, err := conn.Read(p)
	if err != nil && isTimeout(err) {
		return n, ErrWouldBlock
	}
	return n, err
}

func (t *tcpTransport) Write(p []byte) (int, error) {
	conn := t.activeConn()
	_ = conn.SetWriteDeadline(time.Now().Add(pollDeadline))
	n, err := conn.Write(p)
	if err != nil && isTimeout(err) {
		return n, ErrWouldBlock
	}
	return n, err
}

func (t *tcpTransport) Close() error {
	conn := t.activeConn()
	_ = conn.SetDeadline(time.Time{})
	return conn.Close()
}

func (t *tcpTransport) Upgrade(serverName string) error {
	t.mu.Lock()
	if t.upgrading || t.upgradeDone {
		t.mu.Unlock()
		return fmt.Errorf("transport: upgrade already in progress or complete")
	}
	t.upgrading = true
	t.mu.Unlock()

	tlsConn := tls.Client(t.conn, &tls.Config{ServerName: serverName})

	go func() {
		_ = tlsConn.SetDeadline(time.Now().Add(30 * time.Second))
		err := tlsConn.Handshake()
		_ = tlsConn.SetDeadline(time.Time{})

		t.mu.Lock()
		defer t.mu.Unlock()
		t.upgrading = false
		t.upgradeDone = true
		t.upgradeErr = err
		if err == nil {
			t.conn = tlsConn
		}
	}()

	return nil
}

func (t *tcpTransport) HandshakeDone() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.upgrading && !t.upgradeDone {
		return true, nil
	}
	return t.upgradeDone, t.upgradeErr
}
