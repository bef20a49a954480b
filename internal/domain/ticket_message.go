package domain

import "time"

// SenderType is captured when a message is sent and never re-derived.
type SenderType string

const (
	SenderTypeUser  SenderType = "user"
	SenderTypeAdmin SenderType = "admin"
)

// TicketMessage captures communications in a ticket thread.
type TicketMessage struct {
	ID          string
	TicketID    string
	SenderID    string
	SenderType  SenderType
	IsInternal  bool
	Content     string
	Attachments []Attachment
	CreatedAt   time.Time
}

// Clone copies the message including its attachment slice.
func (m TicketMessage) Clone() TicketMessage {
	cp := m
	if m.Attachments != nil {
		cp.Attachments = append([]Attachment(nil), m.Attachments...)
	}
	return cp
}

// Attachment stores metadata for a file uploaded with a message.
type Attachment struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Mimetype     string `json:"mimetype"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}
