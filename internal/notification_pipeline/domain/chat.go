package domain

import (
	"context"
	"errors"
	"time"
)

// Fixed strings written by the moderation path. The client renders these
// verbatim, so they live with the domain model rather than in config.
const (
	// BlockedMessagePlaceholder replaces the text of a message that failed
	// moderation. Redaction is a fixed point: redacting an already-redacted
	// message changes nothing.
	BlockedMessagePlaceholder = "차단된 메시지입니다."
	// BlockedRoomPreview is the denormalized last-message preview written to
	// the room when its latest message was blocked.
	BlockedRoomPreview = "⚠️ 차단된 메시지"
	// MediaMessageBody is the notification body for a message without text.
	MediaMessageBody = "사진을 보냈습니다."
)

var (
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrMessageNotFound = errors.New("chat message not found")
)

// ChatRoom is the chat room document. Rooms are created by the application
// when the first message is sent and deleted by user action.
type ChatRoom struct {
	ID            string
	Participants  []string
	LastMessage   string
	LastMessageAt time.Time
	// ReadMarkers maps a participant uid to whether they have read the
	// latest message.
	ReadMarkers map[string]bool
	// IsBlocked reflects the moderation outcome of the most recent message.
	// It is transient: the next clean message clears it.
	IsBlocked bool
}

// RecipientOf returns the participant that is not senderUID, or "" when the
// sender is not a participant or the room is malformed.
func (r *ChatRoom) RecipientOf(senderUID string) string {
	for _, uid := range r.Participants {
		if uid != senderUID {
			return uid
		}
	}
	return ""
}

// ChatMessage is a single message inside a room. Blocked messages are
// redacted in place, never deleted; IsBlocked is never reset to false.
type ChatMessage struct {
	ID        string
	ChatID    string
	SenderUID string
	// Text is empty for media-only messages.
	Text      string
	IsBlocked bool
	CreatedAt time.Time
}

// ChatRepository is the pipeline's access to room and message documents.
type ChatRepository interface {
	GetRoom(ctx context.Context, chatID string) (*ChatRoom, error)

	// RedactMessage replaces the message text with BlockedMessagePlaceholder
	// and sets is_blocked. Safe to re-run on an already-redacted message.
	RedactMessage(ctx context.Context, chatID, messageID string) error

	// MarkRoomBlocked writes the blocked preview, sets the room's blocked
	// flag and marks the sender's read marker true.
	MarkRoomBlocked(ctx context.Context, chatID, senderUID string) error

	// ClearRoomBlocked resets the room's blocked flag after a clean message.
	ClearRoomBlocked(ctx context.Context, chatID string) error

	// DeleteMessagesBatch deletes up to limit messages of a room and reports
	// how many were deleted. Used by the cascade cleanup after room deletion.
	DeleteMessagesBatch(ctx context.Context, chatID string, limit int) (int64, error)
}
