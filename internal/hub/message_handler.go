package hub

import (
	"context"

	"github.com/yashveerji/LinkedIn-B/internal/event"
	"github.com/yashveerji/LinkedIn-B/internal/model"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------
// Presence
// -----------------------------------------------------------------

func (h *Hub) handleRegister(c *Client, reg *event.Register) {
	if c.authUserID != "" && reg.UserID != c.authUserID {
		h.logger.Warn("register does not match authenticated user",
			zap.String("client_id", c.ID),
			zap.String("auth_user_id", c.authUserID),
			zap.String("user_id", reg.UserID),
		)
		return
	}

	online, detached := h.directory.Register(reg.UserID, c.ID)
	c.setUserID(reg.UserID)

	if detached.OK && detached.Offline {
		h.userWentOffline(detached.UserID)
	}

	h.logger.Info("client registered",
		zap.String("client_id", c.ID),
		zap.String("user_id", reg.UserID),
		zap.Bool("first_socket", online),
	)

	if online {
		h.userCameOnline(reg.UserID, c.ID)
	}
	h.sendPresenceSnapshot(c)
}

func (h *Hub) userCameOnline(userID, skipClientID string) {
	h.broadcast(event.UserOnline{UserID: userID}, skipClientID)

	if h.mirror != nil {
		h.mirror.push(mirrorJob{userID: userID, online: true})
	}
}

// userWentOffline announces the transition and stamps last-seen in the
// background.
func (h *Hub) userWentOffline(userID string) {
	h.broadcast(event.UserOffline{UserID: userID}, "")

	seenAt := h.now()
	h.effects.goRun("update_last_seen", func(ctx context.Context) error {
		return h.store.UpdateLastSeen(ctx, userID, seenAt)
	})
	if h.mirror != nil {
		h.mirror.push(mirrorJob{userID: userID, seenAt: seenAt})
	}
}

func (h *Hub) sendPresenceSnapshot(c *Client) {
	h.sendToClient(c, event.PresenceSnapshot{Users: h.directory.Snapshot()})
}

// -----------------------------------------------------------------
// Chat
// -----------------------------------------------------------------

func (h *Hub) handleSendMessage(c *Client, m *event.SendMessage) {
	now := h.now()

	msg := &model.Message{
		From:      m.SenderID,
		To:        m.ReceiverID,
		Text:      m.Text,
		Post:      m.PostID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	msg.SetAttachment(m.Attachment)

	var messageID string
	_ = h.effects.run("insert_message", func(ctx context.Context) error {
		id, err := h.store.InsertMessage(ctx, msg)
		messageID = id
		return err
	})

	targets := h.clientsFor(m.ReceiverID)
	delivered := len(targets) > 0

	if delivered {
		if messageID != "" {
			_ = h.effects.run("mark_delivered", func(ctx context.Context) error {
				return h.store.MarkDelivered(ctx, messageID, now)
			})
		}

		h.sendToClients(targets, event.ReceiveMessage{
			SenderID:   m.SenderID,
			Text:       m.Text,
			Attachment: m.Attachment,
			PostID:     m.PostID,
			Time:       now,
			MessageID:  messageID,
		})
	}

	h.sendToClient(c, event.MessageStatus{
		ClientID:  m.ClientID,
		MessageID: messageID,
		Delivered: delivered,
	})
}

func (h *Hub) handleTyping(t *event.Typing) {
	h.sendToUser(t.To, event.TypingNotice{From: t.From, IsTyping: t.IsTyping})
}

// handleMarkRead stamps every unread message m.To sent to m.From, then tells
// the reader's sockets.
func (h *Hub) handleMarkRead(m *event.MarkRead) {
	readAt := h.now()
	_ = h.effects.run("mark_read", func(ctx context.Context) error {
		n, err := h.store.MarkConversationRead(ctx, m.From, m.To, readAt)
		if err == nil {
			h.logger.Debug("conversation read",
				zap.String("reader", m.From),
				zap.String("peer", m.To),
				zap.Int64("messages", n),
			)
		}
		return err
	})

	h.sendToUser(m.From, event.MessagesRead{PeerID: m.To})
}
