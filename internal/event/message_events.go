package event

import (
	"errors"
	"time"

	"github.com/yashveerji/LinkedIn-B/internal/model"
)

// -----------------------------------------------------------------
// Client to Server
// -----------------------------------------------------------------

// Register announces which user owns the sending socket
type Register struct {
	UserID string `json:"userId"`
}

func (Register) EventName() string  { return EventRegister }
func (r *Register) validate() error { return requireIDs("userId", r.UserID) }

// SendMessage is a direct message from SenderID to ReceiverID
type SendMessage struct {
	SenderID   string            `json:"senderId"`
	ReceiverID string            `json:"receiverId"`
	Text       string            `json:"text"`
	ClientID   string            `json:"clientId"` // client-side correlation id, echoed in message_status
	Attachment *model.Attachment `json:"attachment,omitempty"`
	PostID     string            `json:"postId,omitempty"` // shared post reference
}

func (SendMessage) EventName() string { return EventSendMessage }
func (m *SendMessage) validate() error {
	if err := requireIDs("senderId", m.SenderID, "receiverId", m.ReceiverID); err != nil {
		return err
	}
	if m.Attachment != nil && m.Attachment.URL == "" {
		m.Attachment = nil
	}
	if m.Text == "" && m.Attachment == nil && m.PostID == "" {
		return errors.New("message needs text, an attachment or a post")
	}
	return nil
}

// Typing is a lossy typing indicator
type Typing struct {
	From     string `json:"from"`
	To       string `json:"to"`
	IsTyping bool   `json:"isTyping"`
}

func (Typing) EventName() string  { return EventTyping }
func (t *Typing) validate() error { return requireIDs("from", t.From, "to", t.To) }

// PresenceRequest asks for the current online user list
type PresenceRequest struct{}

func (PresenceRequest) EventName() string { return EventPresenceRequest }
func (*PresenceRequest) validate() error  { return nil }

// MarkRead acknowledges every message From has received from To.
type MarkRead struct {
	From string `json:"from"` // the reader
	To   string `json:"to"`   // the peer whose messages are being read
}

func (MarkRead) EventName() string  { return EventMarkRead }
func (m *MarkRead) validate() error { return requireIDs("from", m.From, "to", m.To) }

// -----------------------------------------------------------------
// Server to Client
// -----------------------------------------------------------------

// UserOnline is broadcast when a user's first socket registers
type UserOnline struct {
	UserID string `json:"userId"`
}

func (UserOnline) EventName() string { return EventUserOnline }

// UserOffline is broadcast when a user's last socket goes away
type UserOffline struct {
	UserID string `json:"userId"`
}

func (UserOffline) EventName() string { return EventUserOffline }

// PresenceSnapshot lists every online user
type PresenceSnapshot struct {
	Users []string `json:"users"`
}

func (PresenceSnapshot) EventName() string { return EventPresenceSnapshot }

// ReceiveMessage is delivered to each of the recipient's sockets
type ReceiveMessage struct {
	SenderID   string            `json:"senderId"`
	Text       string            `json:"text"`
	Attachment *model.Attachment `json:"attachment,omitempty"`
	PostID     string            `json:"postId,omitempty"`
	Time       time.Time         `json:"time"`
	MessageID  string            `json:"messageId"`
}

func (ReceiveMessage) EventName() string { return EventReceiveMessage }

// MessageStatus acknowledges a send to the originating socket only
type MessageStatus struct {
	ClientID  string `json:"clientId"`
	MessageID string `json:"messageId"`
	Delivered bool   `json:"delivered"`
}

func (MessageStatus) EventName() string { return EventMessageStatus }

// TypingNotice is the relayed typing indicator
type TypingNotice struct {
	From     string `json:"from"`
	IsTyping bool   `json:"isTyping"`
}

func (TypingNotice) EventName() string { return EventTyping }

// MessagesRead tells the reader's sockets which conversation is now read
type MessagesRead struct {
	PeerID string `json:"peerId"`
}

func (MessagesRead) EventName() string { return EventMessagesRead }
