package hub

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/yashveerji/LinkedIn-B/internal/event"
	"go.uber.org/zap"
)

type Client struct {
	ID          string
	conn        *websocket.Conn
	manager     *Hub
	egress      chan event.WsEvent
	connectedAt time.Time

	// authUserID is the verified identity of the upgrade request, empty when
	// the hub runs without a verifier.
	authUserID string
	userID     string
	userMu     sync.RWMutex

	// cancel or stop goroutine
	cancel         context.CancelFunc
	ctx            context.Context
	once           sync.Once
	connClosed     chan struct{}
	connClosedOnce sync.Once
	closed         bool         // tracks if client is closed
	closedMu       sync.RWMutex // protects closed flag and egress close
}

var (
	// tuning parameters
	writeWait          = 10 * time.Second       // time allowed to write a message to the peer
	pongWait           = 20 * time.Second       // time allowed to read the next pong message from the peer
	pingInterval       = (pongWait * 9) / 10    // send pings to peer with this period
	maxMessageSize     = 64 * 1024              // max inbound message size (64KB)
	sendBufSize        = 256                    // per-connection outbound buffer size
	workerPoolSize     = 16                     // number of workers to process inbound messages
	inboundQueueSize   = 1024                   // per-worker inbound buffer
	sendTimeout        = 2 * time.Second        // timeout for enqueuing outbound messages
	kickOnFull         = true                   // when true, disconnect client when egress is full
	inboundSendTimeout = 500 * time.Millisecond // timeout for sending to inbound channel
	closeGrace         = 5 * time.Second        // wait for the write pump before force closing
)

func newClient(h *Hub, conn *websocket.Conn, authUserID string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:          uuid.New().String(),
		conn:        conn,
		manager:     h,
		egress:      make(chan event.WsEvent, sendBufSize),
		connectedAt: h.now(),
		authUserID:  authUserID,
		cancel:      cancel,
		ctx:         ctx,
		connClosed:  make(chan struct{}),
	}
}

// RegisterClient attaches a new socket to the hub and starts its pumps. The
// socket is anonymous until it sends register.
func RegisterClient(h *Hub, conn *websocket.Conn, authUserID string) (*Client, error) {
	if h.ctx.Err() != nil {
		return nil, errHubStopped
	}

	client := newClient(h, conn, authUserID)
	h.addClient(client)

	go client.ReadMessages()
	go client.WriteMessage()

	h.logger.Info("client connected",
		zap.String("client_id", client.ID),
		zap.String("auth_user_id", authUserID),
	)
	return client, nil
}

func (c *Client) ReadMessages() {
	logger := c.manager.logger.With(zap.String("client_id", c.ID))

	defer func() {
		c.manager.enqueueDisconnect(c)
		c.Close()
	}()

	c.conn.SetReadLimit(int64(maxMessageSize))
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var ev event.WsEvent
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				logger.Debug("client disconnected")
				return
			}

			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseInternalServerErr,
				websocket.CloseProtocolError,
			) {
				logger.Warn("unexpected close", zap.Error(err))
			}

			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Info("client timed out - closing connection")
				return
			}

			logger.Debug("read error", zap.Error(err))
			return
		}

		if !c.manager.enqueue(c, ev) {
			return
		}
	}
}

func (c *Client) WriteMessage() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()

		c.connClosedOnce.Do(func() {
			close(c.connClosed)
		})
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case ev, ok := <-c.egress:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.manager.logger.Debug("write failed",
					zap.String("client_id", c.ID),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.manager.logger.Debug("ping failed",
					zap.String("client_id", c.ID),
					zap.Error(err),
				)
				return
			}
		}
	}
}

func (c *Client) pongHandler(string) error {
	return c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

func (c *Client) Close() {
	c.once.Do(func() {
		// wake any sender blocked in SafeSend before taking the write lock
		c.cancel()

		c.closedMu.Lock()
		c.closed = true
		close(c.egress)
		c.closedMu.Unlock()

		if c.conn == nil {
			return
		}

		// Wait for WriteMessage to close conn, or force close after timeout
		go func() {
			select {
			case <-c.connClosed:
			case <-time.After(closeGrace):
				_ = c.conn.Close()
			}
		}()
	})
}

// IsClosed returns true if the client has been closed
func (c *Client) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

// SafeSend attempts to send an event to the client's egress channel.
// Returns true if sent successfully, false if client is closed or timeout.
func (c *Client) SafeSend(ev event.WsEvent, timeout time.Duration) bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()

	if c.closed {
		return false
	}

	select {
	case <-c.ctx.Done():
		return false
	case c.egress <- ev:
		return true
	case <-time.After(timeout):
		return false
	}
}

// UserID returns the user this socket registered as, or "".
func (c *Client) UserID() string {
	c.userMu.RLock()
	defer c.userMu.RUnlock()
	return c.userID
}

func (c *Client) setUserID(userID string) {
	c.userMu.Lock()
	defer c.userMu.Unlock()
	c.userID = userID
}
