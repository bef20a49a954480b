package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload. Multipart requests carry the same fields as form values
// plus files under "attachments".
type CreateTicketRequest struct {
	Subject  string                `json:"subject" form:"subject" valid:"required"`
	Category domain.TicketCategory `json:"category" form:"category" valid:"required"`
	Content  string                `json:"content" form:"content" valid:"required"`
}

// PostMessageRequest payload. Content may be empty when files are attached.
type PostMessageRequest struct {
	Content    string `json:"content" form:"content"`
	IsInternal bool   `json:"isInternal" form:"isInternal"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status" valid:"required"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority" valid:"required"`
}

// AssignRequest payload. A null or empty assignedUserId unassigns the ticket.
type AssignRequest struct {
	AssignedUserID *string `json:"assignedUserId"`
}

// RateRequest payload.
type RateRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// TicketResponse is a ticket as the caller may see it. Listings leave Messages out.
type TicketResponse struct {
	ID         string                `json:"id"`
	TicketID   string                `json:"ticketId"`
	UserID     string                `json:"userId"`
	Subject    string                `json:"subject"`
	Category   domain.TicketCategory `json:"category"`
	Status     domain.TicketStatus   `json:"status"`
	Priority   domain.TicketPriority `json:"priority"`
	AssignedTo *string               `json:"assignedTo"`
	Rating     *int                  `json:"rating"`
	Feedback   *string               `json:"feedback"`
	Messages   []MessageResponse     `json:"messages,omitempty"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
	ResolvedAt *time.Time            `json:"resolvedAt"`
}

// TicketDetailResponse adds the customer's other tickets for staff viewers.
type TicketDetailResponse struct {
	TicketResponse
	CustomerTickets []TicketResponse `json:"customerTickets,omitempty"`
}

// MessageResponse represents a thread message.
type MessageResponse struct {
	ID          string               `json:"id"`
	SenderID    string               `json:"senderId"`
	SenderType  domain.SenderType    `json:"senderType"`
	IsInternal  bool                 `json:"isInternal"`
	Content     string               `json:"content"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Mimetype     string `json:"mimetype"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

// HistoryResponse is one audit trail entry.
type HistoryResponse struct {
	ID          string                  `json:"id"`
	ChangeType  domain.TicketChangeType `json:"changeType"`
	FromUser    string                  `json:"fromUser"`
	ToUser      *string                 `json:"toUser"`
	FromValue   string                  `json:"fromValue"`
	ToValue     string                  `json:"toValue"`
	Description string                  `json:"description"`
	CreatedAt   time.Time               `json:"createdAt"`
}

// Pagination accompanies list responses.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
