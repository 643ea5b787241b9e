package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashveerji/LinkedIn-B/internal/model"
)

func frame(name, payload string) WsEvent {
	return WsEvent{Event: name, Payload: json.RawMessage(payload)}
}

func TestDecode_RegisterObjectAndBareString(t *testing.T) {
	in, err := Decode(frame(EventRegister, `{"userId":"u1"}`))
	require.NoError(t, err)
	assert.Equal(t, &Register{UserID: "u1"}, in)

	in, err = Decode(frame(EventRegister, `"u2"`))
	require.NoError(t, err)
	assert.Equal(t, &Register{UserID: "u2"}, in)

	_, err = Decode(frame(EventRegister, `{}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Decode(frame(EventRegister, ``))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecode_UnknownEvent(t *testing.T) {
	_, err := Decode(frame("launch_rockets", `{}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestDecode_MalformedPayload(t *testing.T) {
	_, err := Decode(frame(EventTyping, `{"from":`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecode_SendMessage(t *testing.T) {
	in, err := Decode(frame(EventSendMessage, `{
		"senderId":"a","receiverId":"b","text":"hi","clientId":"c1",
		"attachment":{"url":"https://cdn/x.png","type":"image","size":10},
		"postId":"p1"
	}`))
	require.NoError(t, err)

	msg, ok := in.(*SendMessage)
	require.True(t, ok)
	assert.Equal(t, "a", msg.SenderID)
	assert.Equal(t, "b", msg.ReceiverID)
	assert.Equal(t, "c1", msg.ClientID)
	assert.Equal(t, "p1", msg.PostID)
	require.NotNil(t, msg.Attachment)
	assert.Equal(t, int64(10), msg.Attachment.Size)
}

func TestDecode_SendMessageDropsURLlessAttachment(t *testing.T) {
	in, err := Decode(frame(EventSendMessage, `{"senderId":"a","receiverId":"b","text":"hi","attachment":{"type":"image"}}`))
	require.NoError(t, err)
	assert.Nil(t, in.(*SendMessage).Attachment)

	_, err = Decode(frame(EventSendMessage, `{"senderId":"a","receiverId":"b","attachment":{"type":"image"}}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecode_SendMessageAttachmentOnly(t *testing.T) {
	in, err := Decode(frame(EventSendMessage, `{"senderId":"a","receiverId":"b","attachment":{"url":"u"}}`))
	require.NoError(t, err)
	assert.Equal(t, "u", in.(*SendMessage).Attachment.URL)
}

func TestDecode_PresenceRequestWithoutPayload(t *testing.T) {
	in, err := Decode(WsEvent{Event: EventPresenceRequest})
	require.NoError(t, err)
	assert.IsType(t, &PresenceRequest{}, in)

	in, err = Decode(frame(EventPresenceRequest, `null`))
	require.NoError(t, err)
	assert.IsType(t, &PresenceRequest{}, in)
}

func TestDecode_MarkReadRequiresBothSides(t *testing.T) {
	in, err := Decode(frame(EventMarkRead, `{"from":"reader","to":"peer"}`))
	require.NoError(t, err)
	assert.Equal(t, &MarkRead{From: "reader", To: "peer"}, in)

	_, err = Decode(frame(EventMarkRead, `{"from":"reader"}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecode_CallUser(t *testing.T) {
	in, err := Decode(frame(EventCallUser, `{
		"to":"b","from":"a","callType":"video",
		"offer":{"type":"offer","sdp":"v=0"},
		"icePrefs":{"forceRelay":true}
	}`))
	require.NoError(t, err)

	call := in.(*CallUser)
	assert.Equal(t, webrtc.SDPTypeOffer, call.Offer.Type)
	assert.Equal(t, "v=0", call.Offer.SDP)
	assert.JSONEq(t, `{"forceRelay":true}`, string(call.IcePrefs))
}

func TestDecode_CallUserRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"call type":  `{"to":"b","from":"a","callType":"hologram","offer":{"type":"offer","sdp":"v=0"}}`,
		"sdp type":   `{"to":"b","from":"a","callType":"audio","offer":{"type":"answer","sdp":"v=0"}}`,
		"empty sdp":  `{"to":"b","from":"a","callType":"audio","offer":{"type":"offer","sdp":""}}`,
		"missing to": `{"from":"a","callType":"audio","offer":{"type":"offer","sdp":"v=0"}}`,
	}
	for name, payload := range cases {
		_, err := Decode(frame(EventCallUser, payload))
		assert.ErrorIs(t, err, ErrInvalidPayload, name)
	}
}

func TestDecode_AnswerAndCandidate(t *testing.T) {
	in, err := Decode(frame(EventAnswerCall, `{"to":"a","from":"b","answer":{"type":"answer","sdp":"v=0"}}`))
	require.NoError(t, err)
	assert.Equal(t, webrtc.SDPTypeAnswer, in.(*AnswerCall).Answer.Type)

	in, err = Decode(frame(EventIceCandidate, `{"to":"a","from":"b","candidate":{"candidate":"candidate:1 1 udp 1 10.0.0.1 5000 typ host","sdpMid":"0","sdpMLineIndex":0}}`))
	require.NoError(t, err)
	cand := in.(*IceCandidate).Candidate
	require.NotNil(t, cand)
	assert.Contains(t, cand.Candidate, "typ host")
	require.NotNil(t, cand.SDPMid)
	assert.Equal(t, "0", *cand.SDPMid)
}

func TestIceCandidate_EndOfCandidatesRelaysNull(t *testing.T) {
	in, err := Decode(frame(EventIceCandidate, `{"to":"a","from":"b","candidate":null}`))
	require.NoError(t, err)
	msg := in.(*IceCandidate)
	assert.Nil(t, msg.Candidate)

	out, err := Encode(IceCandidateRelay{From: msg.From, Candidate: msg.Candidate})
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"b","candidate":null}`, string(out.Payload))
}

func TestDecode_HangupEvents(t *testing.T) {
	in, err := Decode(frame(EventEndCall, `{"to":"b","from":"a"}`))
	require.NoError(t, err)
	assert.Equal(t, &EndCall{To: "b", From: "a"}, in)

	in, err = Decode(frame(EventRejectCall, `{"to":"a","from":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, &RejectCall{To: "a", From: "b"}, in)
}

func TestEncode_ReceiveMessage(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ev, err := Encode(ReceiveMessage{
		SenderID:   "a",
		Text:       "hi",
		Attachment: &model.Attachment{URL: "u", Type: "image"},
		Time:       at,
		MessageID:  "m1",
	})
	require.NoError(t, err)

	assert.Equal(t, EventReceiveMessage, ev.Event)
	assert.JSONEq(t, `{
		"senderId":"a","text":"hi","attachment":{"url":"u","type":"image"},
		"time":"2024-05-01T12:00:00Z","messageId":"m1"
	}`, string(ev.Payload))
}

func TestEncode_FrameShape(t *testing.T) {
	ev, err := Encode(MessageStatus{ClientID: "c1", MessageID: "", Delivered: false})
	require.NoError(t, err)

	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"message_status","payload":{"clientId":"c1","messageId":"","delivered":false}}`, string(raw))
}

func TestEncode_RelaysKeepInboundNames(t *testing.T) {
	for _, out := range []Outbound{
		TypingNotice{}, IceCandidateRelay{}, IcePrefsRelay{},
		RenegotiateOfferRelay{}, RenegotiateAnswerRelay{},
	} {
		ev, err := Encode(out)
		require.NoError(t, err)
		assert.Contains(t, []string{
			EventTyping, EventIceCandidate, EventIcePrefs, EventRenegotiateOffer, EventRenegotiateAnswer,
		}, ev.Event)
	}
}
