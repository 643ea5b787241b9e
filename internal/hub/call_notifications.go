package hub

import (
	"github.com/yashveerji/LinkedIn-B/internal/event"
)

// -----------------------------------------------------------------
// Notification Methods - Send Call Events to Clients
// -----------------------------------------------------------------

func (ch *CallHandler) notifyIncomingCall(targets []*Client, call *event.CallUser) {
	ch.hub.sendToClients(targets, event.IncomingCall{
		From:     call.From,
		Offer:    call.Offer,
		CallType: call.CallType,
		IcePrefs: call.IcePrefs,
	})
}

func (ch *CallHandler) notifyCallUnavailable(caller *Client, calleeID string) {
	ch.hub.sendToClient(caller, event.CallUnavailable{To: calleeID})
}

// notifyCallEnded reaches the peer, the hanging-up user's other sockets and the
// originating socket, each once.
func (ch *CallHandler) notifyCallEnded(end *event.EndCall, origin *Client) {
	seen := make(map[string]struct{})
	var targets []*Client

	add := func(clients ...*Client) {
		for _, c := range clients {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			targets = append(targets, c)
		}
	}
	add(ch.hub.clientsFor(end.To)...)
	add(ch.hub.clientsFor(end.From)...)
	add(origin)

	ch.hub.sendToClients(targets, event.CallEnded{From: end.From})
}
