package wsconn

import (
	"sync"

	"github.com/gorilla/websocket"

	"conngofer/internal/events"
)

// conn adapts a *websocket.Conn to connstream.Conn[[]byte, []byte] and
// announces byte counters and the close to the owning factory's listeners.
type conn struct {
	raw     *websocket.Conn
	factory *Factory
	id      uint64

	// gorilla allows one concurrent writer; reads are driven by the owner.
	writeMu sync.Mutex

	closeOnce sync.Once
}

func newConn(raw *websocket.Conn, f *Factory, id uint64) *conn {
	return &conn{raw: raw, factory: f, id: id}
}

// Write sends one binary message.
func (c *conn) Write(msg []byte) error {
	c.writeMu.Lock()
	err := c.raw.WriteMessage(websocket.BinaryMessage, msg)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}
	c.factory.announce(events.Event{
		Kind:     events.KindBytesWritten,
		Endpoint: c.factory.name,
		ConnID:   c.id,
		Bytes:    len(msg),
	})
	return nil
}

// Read receives the next message.
func (c *conn) Read() ([]byte, error) {
	_, msg, err := c.raw.ReadMessage()
	if err != nil {
		return nil, err
	}
	c.factory.announce(events.Event{
		Kind:     events.KindBytesRead,
		Endpoint: c.factory.name,
		ConnID:   c.id,
		Bytes:    len(msg),
	})
	return msg, nil
}

// Close closes the underlying connection. Safe to call multiple times; the
// close event is announced once.
func (c *conn) Close() error {
	err := c.raw.Close()
	c.closeOnce.Do(func() {
		c.factory.announce(events.Event{
			Kind:     events.KindConnClosed,
			Endpoint: c.factory.name,
			ConnID:   c.id,
		})
	})
	return err
}
