package hub

import (
	"github.com/yashveerji/LinkedIn-B/internal/event"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------
// Delivery Helpers - Send Events to Clients
// -----------------------------------------------------------------

// sendToClient encodes out and queues it on c. A client whose egress stays
// full for sendTimeout is kicked; its read pump then drives the disconnect.
func (h *Hub) sendToClient(c *Client, out event.Outbound) bool {
	ev, err := event.Encode(out)
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("event", out.EventName()), zap.Error(err))
		return false
	}
	return h.deliver(c, ev)
}

func (h *Hub) deliver(c *Client, ev event.WsEvent) bool {
	if c.SafeSend(ev, sendTimeout) {
		return true
	}
	if c.IsClosed() {
		return false
	}

	h.logger.Warn("egress full",
		zap.String("client_id", c.ID),
		zap.String("event", ev.Event),
	)
	if kickOnFull {
		c.Close()
	}
	return false
}

// sendToUser delivers out to every live socket of userID and returns how many
// accepted it. An offline user is not an error.
func (h *Hub) sendToUser(userID string, out event.Outbound) int {
	return h.sendToClients(h.clientsFor(userID), out)
}

func (h *Hub) sendToClients(clients []*Client, out event.Outbound) int {
	if len(clients) == 0 {
		return 0
	}

	ev, err := event.Encode(out)
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("event", out.EventName()), zap.Error(err))
		return 0
	}

	sent := 0
	for _, c := range clients {
		if h.deliver(c, ev) {
			sent++
		}
	}
	return sent
}

// broadcast delivers out to every attached socket except the one with id skip.
func (h *Hub) broadcast(out event.Outbound, skip string) {
	clients := h.allClients()
	targets := clients[:0]
	for _, c := range clients {
		if c.ID != skip {
			targets = append(targets, c)
		}
	}
	h.sendToClients(targets, out)
}
