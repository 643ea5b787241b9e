package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pion/webrtc/v4"
	"github.com/yashveerji/LinkedIn-B/internal/model"
)

// Call Event Types - Client to Server
const (
	// EventCallUser - Caller sends an SDP offer to the callee
	EventCallUser = "call_user"

	// EventAnswerCall - Callee answers with an SDP answer
	EventAnswerCall = "answer_call"

	// EventIceCandidate - Either side trickles an ICE candidate (same name both ways)
	EventIceCandidate = "ice_candidate"

	// EventIcePrefs - Either side shares ICE transport preferences
	EventIcePrefs = "ice_prefs"

	// EventRenegotiateOffer - Mid-call offer (track added/removed); same name both ways
	EventRenegotiateOffer = "renegotiate_offer"

	// EventRenegotiateAnswer - Answer to a mid-call offer; same name both ways
	EventRenegotiateAnswer = "renegotiate_answer"

	// EventEndCall - Either party hangs up
	EventEndCall = "end_call"

	// EventRejectCall - Callee declines a ringing call
	EventRejectCall = "reject_call"
)

// Call Event Types - Server to Client
const (
	EventIncomingCall    = "incoming_call"
	EventCallUnavailable = "call_unavailable"
	EventCallAnswer      = "call_answer"
	EventCallEnded       = "call_ended"
	EventCallRejected    = "call_rejected"
)

// -----------------------------------------------------------------
// Client to Server
// -----------------------------------------------------------------

// CallUser starts a call from From to To
type CallUser struct {
	To       string                    `json:"to"`
	From     string                    `json:"from"`
	Offer    webrtc.SessionDescription `json:"offer"`
	CallType string                    `json:"callType"`
	IcePrefs json.RawMessage           `json:"icePrefs,omitempty"`
}

func (CallUser) EventName() string { return EventCallUser }
func (c *CallUser) validate() error {
	if err := requireIDs("to", c.To, "from", c.From); err != nil {
		return err
	}
	if !model.IsValidCallType(c.CallType) {
		return fmt.Errorf("callType must be %q or %q", model.CallTypeAudio, model.CallTypeVideo)
	}
	return validateSDP(c.Offer, webrtc.SDPTypeOffer)
}

// IcePrefs shares opaque ICE preferences with the peer
type IcePrefs struct {
	To    string          `json:"to"`
	From  string          `json:"from"`
	Prefs json.RawMessage `json:"prefs"`
}

func (IcePrefs) EventName() string  { return EventIcePrefs }
func (p *IcePrefs) validate() error { return requireIDs("to", p.To, "from", p.From) }

// AnswerCall is the callee's answer to a ringing call
type AnswerCall struct {
	To     string                    `json:"to"` // original caller
	From   string                    `json:"from"`
	Answer webrtc.SessionDescription `json:"answer"`
}

func (AnswerCall) EventName() string { return EventAnswerCall }
func (a *AnswerCall) validate() error {
	if err := requireIDs("to", a.To, "from", a.From); err != nil {
		return err
	}
	return validateSDP(a.Answer, webrtc.SDPTypeAnswer)
}

// IceCandidate trickles one candidate to the peer. A null candidate marks the
// end of candidates and is relayed as null.
type IceCandidate struct {
	To        string                   `json:"to"`
	From      string                   `json:"from"`
	Candidate *webrtc.ICECandidateInit `json:"candidate"`
}

func (IceCandidate) EventName() string  { return EventIceCandidate }
func (c *IceCandidate) validate() error { return requireIDs("to", c.To, "from", c.From) }

// RenegotiateOffer carries a mid-call offer
type RenegotiateOffer struct {
	To    string                    `json:"to"`
	From  string                    `json:"from"`
	Offer webrtc.SessionDescription `json:"offer"`
}

func (RenegotiateOffer) EventName() string { return EventRenegotiateOffer }
func (r *RenegotiateOffer) validate() error {
	if err := requireIDs("to", r.To, "from", r.From); err != nil {
		return err
	}
	return validateSDP(r.Offer, webrtc.SDPTypeOffer)
}

// RenegotiateAnswer answers a mid-call offer
type RenegotiateAnswer struct {
	To     string                    `json:"to"`
	From   string                    `json:"from"`
	Answer webrtc.SessionDescription `json:"answer"`
}

func (RenegotiateAnswer) EventName() string { return EventRenegotiateAnswer }
func (r *RenegotiateAnswer) validate() error {
	if err := requireIDs("to", r.To, "from", r.From); err != nil {
		return err
	}
	return validateSDP(r.Answer, webrtc.SDPTypeAnswer)
}

// EndCall hangs up
type EndCall struct {
	To   string `json:"to"`
	From string `json:"from"`
}

func (EndCall) EventName() string  { return EventEndCall }
func (e *EndCall) validate() error { return requireIDs("to", e.To, "from", e.From) }

// RejectCall declines a ringing call
type RejectCall struct {
	To   string `json:"to"` // original caller
	From string `json:"from"`
}

func (RejectCall) EventName() string  { return EventRejectCall }
func (r *RejectCall) validate() error { return requireIDs("to", r.To, "from", r.From) }

// -----------------------------------------------------------------
// Server to Client
// -----------------------------------------------------------------

// IncomingCall rings every socket of the callee
type IncomingCall struct {
	From     string                    `json:"from"`
	Offer    webrtc.SessionDescription `json:"offer"`
	CallType string                    `json:"callType"`
	IcePrefs json.RawMessage           `json:"icePrefs,omitempty"`
}

func (IncomingCall) EventName() string { return EventIncomingCall }

// CallUnavailable tells the caller the callee has no live socket
type CallUnavailable struct {
	To string `json:"to"`
}

func (CallUnavailable) EventName() string { return EventCallUnavailable }

// CallAnswer forwards the callee's answer to the caller
type CallAnswer struct {
	From   string                    `json:"from"`
	Answer webrtc.SessionDescription `json:"answer"`
}

func (CallAnswer) EventName() string { return EventCallAnswer }

// IceCandidateRelay forwards a trickled candidate
type IceCandidateRelay struct {
	From      string                   `json:"from"`
	Candidate *webrtc.ICECandidateInit `json:"candidate"`
}

func (IceCandidateRelay) EventName() string { return EventIceCandidate }

// IcePrefsRelay forwards ICE preferences
type IcePrefsRelay struct {
	From  string          `json:"from"`
	Prefs json.RawMessage `json:"prefs,omitempty"`
}

func (IcePrefsRelay) EventName() string { return EventIcePrefs }

// RenegotiateOfferRelay forwards a mid-call offer
type RenegotiateOfferRelay struct {
	From  string                    `json:"from"`
	Offer webrtc.SessionDescription `json:"offer"`
}

func (RenegotiateOfferRelay) EventName() string { return EventRenegotiateOffer }

// RenegotiateAnswerRelay forwards a mid-call answer
type RenegotiateAnswerRelay struct {
	From   string                    `json:"from"`
	Answer webrtc.SessionDescription `json:"answer"`
}

func (RenegotiateAnswerRelay) EventName() string { return EventRenegotiateAnswer }

// CallEnded notifies both parties that the call is over
type CallEnded struct {
	From string `json:"from"`
}

func (CallEnded) EventName() string { return EventCallEnded }

// CallRejected notifies the caller that the callee declined
type CallRejected struct {
	From string `json:"from"`
}

func (CallRejected) EventName() string { return EventCallRejected }

func validateSDP(desc webrtc.SessionDescription, want webrtc.SDPType) error {
	if desc.SDP == "" {
		return errors.New("sdp is required")
	}
	if desc.Type != want {
		return fmt.Errorf("sdp type must be %s, got %s", want, desc.Type)
	}
	return nil
}
