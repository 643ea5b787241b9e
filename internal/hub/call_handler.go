package hub

import (
	"github.com/yashveerji/LinkedIn-B/internal/event"
	"github.com/yashveerji/LinkedIn-B/internal/model"
	"go.uber.org/zap"
)

// CallHandler relays WebRTC signaling between users and records each call's
// lifecycle in the call log. It never touches media.
type CallHandler struct {
	hub *Hub
}

// NewCallHandler creates a call handler bound to hub
func NewCallHandler(hub *Hub) *CallHandler {
	return &CallHandler{hub: hub}
}

// HandleCallEvent processes call-related WebSocket events
func (ch *CallHandler) HandleCallEvent(in event.Inbound, c *Client) {
	switch msg := in.(type) {
	case *event.CallUser:
		ch.handleCallUser(msg, c)
	case *event.AnswerCall:
		ch.handleAnswerCall(msg)
	case *event.IceCandidate:
		ch.hub.sendToUser(msg.To, event.IceCandidateRelay{From: msg.From, Candidate: msg.Candidate})
	case *event.IcePrefs:
		ch.hub.sendToUser(msg.To, event.IcePrefsRelay{From: msg.From, Prefs: msg.Prefs})
	case *event.RenegotiateOffer:
		ch.hub.sendToUser(msg.To, event.RenegotiateOfferRelay{From: msg.From, Offer: msg.Offer})
	case *event.RenegotiateAnswer:
		ch.hub.sendToUser(msg.To, event.RenegotiateAnswerRelay{From: msg.From, Answer: msg.Answer})
	case *event.EndCall:
		ch.handleEndCall(msg, c)
	case *event.RejectCall:
		ch.handleRejectCall(msg)
	default:
		ch.hub.logger.Warn("unhandled call event", zap.String("event", in.EventName()))
	}
}

// handleCallUser rings every socket of the callee, or tells the caller the
// callee is unreachable and logs the attempt as unavailable.
func (ch *CallHandler) handleCallUser(call *event.CallUser, c *Client) {
	now := ch.hub.now()
	targets := ch.hub.clientsFor(call.To)

	if len(targets) == 0 {
		ch.hub.logger.Info("call target offline",
			zap.String("from", call.From),
			zap.String("to", call.To),
		)
		ch.notifyCallUnavailable(c, call.To)
		ch.recordCall(call, model.CallStatusUnavailable, now)
		return
	}

	ch.recordCall(call, model.CallStatusRinging, now)
	ch.notifyIncomingCall(targets, call)

	ch.hub.logger.Info("call ringing",
		zap.String("from", call.From),
		zap.String("to", call.To),
		zap.String("call_type", call.CallType),
		zap.Int("sockets", len(targets)),
	)
}

func (ch *CallHandler) handleAnswerCall(answer *event.AnswerCall) {
	ch.transitionLatest(model.CallLogFilter{
		From:     answer.To,
		To:       answer.From,
		Statuses: []model.CallStatus{model.CallStatusRinging},
	}, model.CallStatusAnswered)

	ch.hub.sendToUser(answer.To, event.CallAnswer{From: answer.From, Answer: answer.Answer})
}

// handleEndCall notifies the peer plus every socket of the party hanging up,
// including the originating one, then closes the call log.
func (ch *CallHandler) handleEndCall(end *event.EndCall, c *Client) {
	ch.notifyCallEnded(end, c)

	ch.transitionLatest(model.CallLogFilter{
		From:            end.From,
		To:              end.To,
		EitherDirection: true,
		Statuses:        []model.CallStatus{model.CallStatusRinging, model.CallStatusAnswered},
	}, model.CallStatusEnded)
}

func (ch *CallHandler) handleRejectCall(reject *event.RejectCall) {
	ch.hub.sendToUser(reject.To, event.CallRejected{From: reject.From})

	ch.transitionLatest(model.CallLogFilter{
		From:     reject.To,
		To:       reject.From,
		Statuses: []model.CallStatus{model.CallStatusRinging},
	}, model.CallStatusRejected)
}
