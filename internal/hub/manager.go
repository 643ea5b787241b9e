package hub

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yashveerji/LinkedIn-B/internal/auth"
	"github.com/yashveerji/LinkedIn-B/internal/event"
	"github.com/yashveerji/LinkedIn-B/internal/presence"
	"github.com/yashveerji/LinkedIn-B/internal/repo"
	"go.uber.org/zap"
)

const (
	shardCount = 64 // tune: 16/64/128 depending on load
)

// Store is the durable side of the relay.
type Store interface {
	repo.MessageRepository
	repo.CallLogRepository
	repo.UserRepository
}

// Options wires the hub's collaborators. Store, Directory and Logger are required.
type Options struct {
	Store     Store
	Directory *presence.Directory
	Logger    *zap.Logger

	Mirror         presence.Mirror // optional
	Verifier       auth.Verifier   // optional; nil trusts the register payload
	EffectHook     EffectHook      // optional
	Clock          func() time.Time
	Workers        int
	AllowedOrigins []string // empty allows any origin
}

type inboundMessage struct {
	event      event.WsEvent
	client     *Client
	disconnect bool
}

type clientBucket struct {
	sync.RWMutex
	clients map[string]*Client
}

type Hub struct {
	shards   [shardCount]*clientBucket
	inbound  []chan inboundMessage
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once

	directory   *presence.Directory
	store       Store
	mirror      *mirrorQueue // nil without a presence mirror
	verifier    auth.Verifier
	effects     *effectRunner
	callHandler *CallHandler
	logger      *zap.Logger
	now         func() time.Time
	upgrader    websocket.Upgrader

	eventsHandled atomic.Uint64
	eventsDropped atomic.Uint64
}

func NewHub(opts Options) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	workers := opts.Workers
	if workers <= 0 {
		workers = workerPoolSize
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	h := &Hub{
		inbound:   make([]chan inboundMessage, workers),
		ctx:       ctx,
		cancel:    cancel,
		directory: opts.Directory,
		store:     opts.Store,
		verifier:  opts.Verifier,
		effects:   newEffectRunner(opts.Logger, opts.EffectHook),
		logger:    opts.Logger,
		now:       clock,
	}
	if opts.Mirror != nil {
		h.mirror = newMirrorQueue(opts.Mirror, opts.Directory, h.effects)
	}
	h.callHandler = NewCallHandler(h)
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(opts.AllowedOrigins),
	}

	for i := 0; i < shardCount; i++ {
		h.shards[i] = &clientBucket{
			clients: make(map[string]*Client),
		}
	}

	// one queue per worker; a connection always hashes to the same worker so
	// its events run in arrival order
	for i := range h.inbound {
		queue := make(chan inboundMessage, inboundQueueSize)
		h.inbound[i] = queue

		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in := <-queue:
					if in.disconnect {
						h.disconnect(in.client)
						continue
					}
					h.handleEvent(in.event, in.client)
				}
			}
		}()
	}

	return h
}

// enqueue hands an inbound frame to the connection's worker. It reports false
// when the queue stayed full for inboundSendTimeout or the hub is stopping.
func (h *Hub) enqueue(c *Client, ev event.WsEvent) bool {
	select {
	case h.queueFor(c) <- inboundMessage{client: c, event: ev}:
		return true
	case <-time.After(inboundSendTimeout):
		h.logger.Warn("inbound queue full, dropping client", zap.String("client_id", c.ID))
		return false
	case <-h.ctx.Done():
		return false
	}
}

// enqueueDisconnect queues the connection's cleanup behind its pending events.
func (h *Hub) enqueueDisconnect(c *Client) {
	select {
	case h.queueFor(c) <- inboundMessage{client: c, disconnect: true}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) queueFor(c *Client) chan inboundMessage {
	return h.inbound[hashKey(c.ID)%uint32(len(h.inbound))]
}

func (h *Hub) handleEvent(ev event.WsEvent, c *Client) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic while handling event",
				zap.String("event", ev.Event),
				zap.String("client_id", c.ID),
				zap.Any("panic", r),
			)
		}
	}()

	in, err := event.Decode(ev)
	if err != nil {
		h.eventsDropped.Add(1)
		h.logger.Warn("dropping inbound event",
			zap.String("event", ev.Event),
			zap.String("client_id", c.ID),
			zap.Error(err),
		)
		return
	}
	h.eventsHandled.Add(1)

	switch msg := in.(type) {
	case *event.Register:
		h.handleRegister(c, msg)
	case *event.SendMessage:
		h.handleSendMessage(c, msg)
	case *event.Typing:
		h.handleTyping(msg)
	case *event.PresenceRequest:
		h.sendPresenceSnapshot(c)
	case *event.MarkRead:
		h.handleMarkRead(msg)
	default:
		h.callHandler.HandleCallEvent(in, c)
	}
}

func hashKey(key string) uint32 {
	sum := sha1.Sum([]byte(key))
	return binary.BigEndian.Uint32(sum[:4])
}

func getShard(clientID string) uint32 {
	if clientID == "" {
		return 0
	}
	return hashKey(clientID) % shardCount
}

func (h *Hub) addClient(c *Client) {
	sh := getShard(c.ID)
	b := h.shards[sh]
	b.Lock()
	defer b.Unlock()

	b.clients[c.ID] = c
	h.logger.Debug("client attached", zap.String("client_id", c.ID), zap.Uint32("shard", sh))
}

func (h *Hub) removeClient(c *Client) bool {
	b := h.shards[getShard(c.ID)]
	b.Lock()
	defer b.Unlock()

	if _, ok := b.clients[c.ID]; !ok {
		return false
	}
	delete(b.clients, c.ID)
	return true
}

func (h *Hub) getClient(clientID string) (*Client, bool) {
	b := h.shards[getShard(clientID)]
	b.RLock()
	defer b.RUnlock()
	c, ok := b.clients[clientID]
	return c, ok
}

// allClients copies every attached client so callers can send without holding
// shard locks.
func (h *Hub) allClients() []*Client {
	var clients []*Client
	for _, b := range h.shards {
		b.RLock()
		for _, c := range b.clients {
			clients = append(clients, c)
		}
		b.RUnlock()
	}
	return clients
}

// clientsFor resolves userID's live sockets to attached clients.
func (h *Hub) clientsFor(userID string) []*Client {
	ids := h.directory.SocketsFor(userID)
	clients := make([]*Client, 0, len(ids))
	for _, id := range ids {
		if c, ok := h.getClient(id); ok {
			clients = append(clients, c)
		}
	}
	return clients
}

// disconnect detaches c and announces the owner's offline transition. Calling
// it again for the same client is a no-op.
func (h *Hub) disconnect(c *Client) {
	h.removeClient(c)
	c.Close()

	userID, offline, ok := h.directory.Unregister(c.ID)
	if !ok {
		return
	}
	h.logger.Info("client unregistered",
		zap.String("client_id", c.ID),
		zap.String("user_id", userID),
		zap.Bool("offline", offline),
	)
	if offline {
		h.userWentOffline(userID)
	}
}

// Stop closes every socket, waits for the dispatch workers and drains pending
// best-effort writes.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.cancel()

		for _, c := range h.allClients() {
			c.Close()
		}

		h.wg.Wait()
		if h.mirror != nil {
			h.mirror.close()
		}
		h.effects.wait()
		h.logger.Info("hub stopped")
	})
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeWS upgrades the request and starts the client's pumps. When a verifier
// is configured the request must carry a valid token.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	var authUserID string
	if h.verifier != nil {
		userID, err := h.verifier.Verify(r)
		if err != nil {
			h.logger.Debug("rejecting socket upgrade", zap.Error(err))
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		authUserID = userID
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	if _, err := RegisterClient(h, conn, authUserID); err != nil {
		h.logger.Warn("failed to attach client", zap.Error(err))
		_ = conn.Close()
	}
}

// errHubStopped is returned when a socket arrives after Stop.
var errHubStopped = errors.New("hub stopped")
