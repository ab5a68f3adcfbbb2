package domain

import (
	"time"

	"github.com/duetlabs/golang_services/internal/core_domain"
)

// NATS subjects carrying document-mutation events. Delivery is at-least-once;
// every consumer must be safe to re-run with the same payload.
const (
	NATSChatMessageCreatedV1   = "chat.messages.created.v1"
	NATSMemberProfileUpdatedV1 = "members.profile.updated.v1"
	NATSChatRoomDeletedV1      = "chat.rooms.deleted.v1"
)

// ChatMessageCreatedEvent is published when a new message document is written.
type ChatMessageCreatedEvent struct {
	ChatID    string    `json:"chat_id" validate:"required"`
	MessageID string    `json:"message_id" validate:"required"`
	SenderUID string    `json:"sender_uid" validate:"required"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberProfileUpdatedEvent carries full before/after snapshots of a member
// document so handlers can diff without re-reading the store.
type MemberProfileUpdatedEvent struct {
	UID    string                     `json:"uid" validate:"required"`
	Before *core_domain.MemberProfile `json:"before" validate:"required"`
	After  *core_domain.MemberProfile `json:"after" validate:"required"`
}

// ChatRoomDeletedEvent is published when a room document is deleted and
// triggers the cascade deletion of its messages.
type ChatRoomDeletedEvent struct {
	ChatID string `json:"chat_id" validate:"required"`
}
