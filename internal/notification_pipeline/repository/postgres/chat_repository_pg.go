package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/duetlabs/golang_services/internal/notification_pipeline/domain"
	"github.com/duetlabs/golang_services/internal/notification_pipeline/repository"
)

// PgChatRepository backs the pipeline's room and message writes.
type PgChatRepository struct {
	db     repository.PgxIface
	logger *slog.Logger
}

func NewPgChatRepository(db repository.PgxIface, logger *slog.Logger) *PgChatRepository {
	return &PgChatRepository{db: db, logger: logger.With("component", "chat_repository_pg")}
}

func (r *PgChatRepository) GetRoom(ctx context.Context, chatID string) (*domain.ChatRoom, error) {
	query := `SELECT id,
	       COALESCE(participants, '[]'::jsonb),
	       COALESCE(last_message, ''),
	       last_message_at,
	       COALESCE(read_markers, '{}'::jsonb),
	       is_blocked
	  FROM chat_rooms WHERE id = $1`

	var (
		room       domain.ChatRoom
		rawParts   []byte
		rawMarkers []byte
	)
	err := r.db.QueryRow(ctx, query, chatID).
		Scan(&room.ID, &rawParts, &room.LastMessage, &room.LastMessageAt, &rawMarkers, &room.IsBlocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("querying chat room %s: %w", chatID, err)
	}
	if err := json.Unmarshal(rawParts, &room.Participants); err != nil {
		return nil, fmt.Errorf("decoding participants: %w", err)
	}
	if err := json.Unmarshal(rawMarkers, &room.ReadMarkers); err != nil {
		return nil, fmt.Errorf("decoding read_markers: %w", err)
	}
	return &room, nil
}

// RedactMessage overwrites the message text with the blocked placeholder and
// sets is_blocked. The write is its own fixed point, so redelivered events
// re-running it change nothing.
func (r *PgChatRepository) RedactMessage(ctx context.Context, chatID, messageID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE chat_messages SET text = $1, is_blocked = TRUE WHERE chat_id = $2 AND id = $3`,
		domain.BlockedMessagePlaceholder, chatID, messageID)
	if err != nil {
		return fmt.Errorf("redacting message %s: %w", messageID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	r.logger.InfoContext(ctx, "Redacted blocked message", "chat_id", chatID, "message_id", messageID)
	return nil
}

// MarkRoomBlocked writes the blocked preview, raises the room's blocked flag
// and marks the sender's read marker true.
func (r *PgChatRepository) MarkRoomBlocked(ctx context.Context, chatID, senderUID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE chat_rooms
		    SET last_message = $1,
		        last_message_at = now(),
		        is_blocked = TRUE,
		        read_markers = jsonb_set(COALESCE(read_markers, '{}'::jsonb), ARRAY[$2], 'true'::jsonb)
		  WHERE id = $3`,
		domain.BlockedRoomPreview, senderUID, chatID)
	if err != nil {
		return fmt.Errorf("marking room %s blocked: %w", chatID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (r *PgChatRepository) ClearRoomBlocked(ctx context.Context, chatID string) error {
	_, err := r.db.Exec(ctx, `UPDATE chat_rooms SET is_blocked = FALSE WHERE id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("clearing blocked flag on room %s: %w", chatID, err)
	}
	return nil
}

// DeleteMessagesBatch deletes up to limit messages of a room and reports how
// many rows were removed. Callers loop until it reports zero.
func (r *PgChatRepository) DeleteMessagesBatch(ctx context.Context, chatID string, limit int) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM chat_messages
		  WHERE ctid IN (SELECT ctid FROM chat_messages WHERE chat_id = $1 LIMIT $2)`,
		chatID, limit)
	if err != nil {
		return 0, fmt.Errorf("deleting message batch for room %s: %w", chatID, err)
	}
	return tag.RowsAffected(), nil
}
