package wsconn

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// Dialer establishes raw WebSocket connections. Production code uses the
// gorilla dialer; tests substitute a stub.
type Dialer interface {
	Dial(ctx context.Context, url string) (*websocket.Conn, error)
}

// GorillaDialer dials with github.com/gorilla/websocket.
type GorillaDialer struct {
	HandshakeTimeout time.Duration
}

// Dial implements Dialer.
func (d GorillaDialer) Dial(ctx context.Context, url string) (*websocket.Conn, error) {
	timeout := d.HandshakeTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}
