package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"notify_hub/internal/config"
	"notify_hub/internal/domain"
)

const closeWriteTimeout = time.Second

// Upgrader turns HTTP upgrade requests into Pending connections backed by
// gorilla/websocket.
type Upgrader struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

func NewUpgrader(cfg *config.Config) *Upgrader {
	return &Upgrader{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		writeTimeout: cfg.WSWriteTimeout,
	}
}

func (u *Upgrader) Pending(w http.ResponseWriter, r *http.Request) Pending {
	return &pendingRequest{w: w, r: r, u: u}
}

type pendingRequest struct {
	w http.ResponseWriter
	r *http.Request
	u *Upgrader
}

// Credential returns the first offered sub-protocol. Browsers cannot set
// headers on the upgrade request, so the token travels there.
func (p *pendingRequest) Credential() string {
	protocols := websocket.Subprotocols(p.r)
	if len(protocols) == 0 {
		return ""
	}
	return protocols[0]
}

func (p *pendingRequest) Accept(subprotocol string) (Conn, error) {
	header := http.Header{}
	if subprotocol != "" {
		header.Set("Sec-WebSocket-Protocol", subprotocol)
	}
	c, err := p.u.upgrader.Upgrade(p.w, p.r, header)
	if err != nil {
		return nil, err
	}
	return &gorillaConn{conn: c, writeTimeout: p.u.writeTimeout}, nil
}

// Reject completes the handshake only to deliver the close code; browsers
// drop a connection whose offered sub-protocol is not echoed.
func (p *pendingRequest) Reject(code int, reason string) error {
	header := http.Header{}
	if credential := p.Credential(); credential != "" {
		header.Set("Sec-WebSocket-Protocol", credential)
	}
	c, err := p.u.upgrader.Upgrade(p.w, p.r, header)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(closeWriteTimeout))
}

// gorillaConn serializes data frames; gorilla allows one concurrent writer,
// while WriteControl and Close are safe to call alongside it.
type gorillaConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	writeMu      sync.Mutex
}

func (c *gorillaConn) Send(msg domain.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteJSON(msg.Envelope())
}

func (c *gorillaConn) Receive() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *gorillaConn) Close(code int, reason string) error {
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(closeWriteTimeout))
	return c.conn.Close()
}
