package model

import (
	"time"
)

// Message represents a direct message document in MongoDB
type Message struct {
	ID               string     `json:"id" bson:"-"`
	From             string     `json:"from" bson:"from"`
	To               string     `json:"to" bson:"to"`
	Text             string     `json:"text,omitempty" bson:"text"`
	AttachmentURL    string     `json:"attachmentUrl,omitempty" bson:"attachmentUrl,omitempty"`
	AttachmentType   string     `json:"attachmentType,omitempty" bson:"attachmentType,omitempty"`
	AttachmentName   string     `json:"attachmentName,omitempty" bson:"attachmentName,omitempty"`
	AttachmentMime   string     `json:"attachmentMime,omitempty" bson:"attachmentMime,omitempty"`
	AttachmentSize   int64      `json:"attachmentSize,omitempty" bson:"attachmentSize,omitempty"`
	AttachmentWidth  int        `json:"attachmentWidth,omitempty" bson:"attachmentWidth,omitempty"`
	AttachmentHeight int        `json:"attachmentHeight,omitempty" bson:"attachmentHeight,omitempty"`
	Post             string     `json:"post,omitempty" bson:"post,omitempty"`
	DeliveredAt      *time.Time `json:"deliveredAt" bson:"deliveredAt"`
	ReadAt           *time.Time `json:"readAt" bson:"readAt"`
	CreatedAt        time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Attachment describes the single file that may ride along with a message.
type Attachment struct {
	URL    string `json:"url"`
	Type   string `json:"type,omitempty"` // "image", "video", "file", ...
	Name   string `json:"name,omitempty"`
	Mime   string `json:"mime,omitempty"`
	Size   int64  `json:"size,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// SetAttachment copies a onto the flat attachment columns. A nil or URL-less
// attachment clears them.
func (m *Message) SetAttachment(a *Attachment) {
	if a == nil || a.URL == "" {
		m.AttachmentURL, m.AttachmentType, m.AttachmentName, m.AttachmentMime = "", "", "", ""
		m.AttachmentSize, m.AttachmentWidth, m.AttachmentHeight = 0, 0, 0
		return
	}
	m.AttachmentURL = a.URL
	m.AttachmentType = a.Type
	m.AttachmentName = a.Name
	m.AttachmentMime = a.Mime
	m.AttachmentSize = a.Size
	m.AttachmentWidth = a.Width
	m.AttachmentHeight = a.Height
}

// Attachment returns the message attachment, or nil when there is none.
func (m *Message) Attachment() *Attachment {
	if m.AttachmentURL == "" {
		return nil
	}
	return &Attachment{
		URL:    m.AttachmentURL,
		Type:   m.AttachmentType,
		Name:   m.AttachmentName,
		Mime:   m.AttachmentMime,
		Size:   m.AttachmentSize,
		Width:  m.AttachmentWidth,
		Height: m.AttachmentHeight,
	}
}

// IsDelivered reports whether the relay reached at least one recipient connection.
func (m *Message) IsDelivered() bool {
	return m.DeliveredAt != nil
}
