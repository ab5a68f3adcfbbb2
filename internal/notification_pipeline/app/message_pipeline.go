package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/duetlabs/golang_services/internal/core_domain"
	"github.com/duetlabs/golang_services/internal/notification_pipeline/domain"
)

// processMessageCreated runs the message pipeline: classify the new message,
// redact it and flag the room if blocked, otherwise notify the recipient.
//
// Re-running with the same event is safe: redaction writes a fixed point, and
// the clean path only re-sends a best-effort notification.
func (s *PipelineService) processMessageCreated(ctx context.Context, evt domain.ChatMessageCreatedEvent) error {
	log := s.logger.With("chat_id", evt.ChatID, "message_id", evt.MessageID, "sender_uid", evt.SenderUID)

	// Moderation policy is fail-open: an unreadable word list degrades to
	// static-only classification, it never fails the invocation.
	bannedWords, err := s.policy.GetActiveBannedWords(ctx)
	if err != nil {
		log.WarnContext(ctx, "Banned-word list unavailable, using static patterns only", "error", err)
		bannedWords = nil
	}

	if s.classifier.Classify(evt.Text, bannedWords) {
		return s.blockMessage(ctx, evt)
	}

	room, err := s.chats.GetRoom(ctx, evt.ChatID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			log.WarnContext(ctx, "Chat room not found, nothing to do")
			invocationsDroppedCounter.WithLabelValues("missing_room").Inc()
			return nil
		}
		return fmt.Errorf("loading chat room %s: %w", evt.ChatID, err)
	}

	// The blocked state is a transient per-room warning; the next clean
	// message clears it before normal dispatch.
	if room.IsBlocked {
		if err := s.chats.ClearRoomBlocked(ctx, evt.ChatID); err != nil {
			return fmt.Errorf("clearing room blocked flag: %w", err)
		}
		log.InfoContext(ctx, "Cleared room blocked flag after clean message")
	}

	recipientUID := room.RecipientOf(evt.SenderUID)
	if recipientUID == "" {
		log.WarnContext(ctx, "Recipient not found among room participants")
		invocationsDroppedCounter.WithLabelValues("missing_recipient").Inc()
		return nil
	}

	recipient, err := s.members.GetByUID(ctx, recipientUID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			log.WarnContext(ctx, "Recipient profile not found", "recipient_uid", recipientUID)
			invocationsDroppedCounter.WithLabelValues("missing_recipient").Inc()
			return nil
		}
		return fmt.Errorf("loading recipient %s: %w", recipientUID, err)
	}

	if !recipient.NotifyPrefs.Allows(core_domain.PrefCategoryChats) {
		log.InfoContext(ctx, "Recipient disabled chat notifications", "recipient_uid", recipientUID)
		invocationsDroppedCounter.WithLabelValues("prefs_disabled").Inc()
		return nil
	}

	if len(recipient.FCMTokens) == 0 {
		log.InfoContext(ctx, "Recipient has no delivery tokens", "recipient_uid", recipientUID)
		invocationsDroppedCounter.WithLabelValues("no_tokens").Inc()
		return nil
	}

	senderName := s.resolveDisplayName(ctx, evt.SenderUID)
	notification := ComposeMessageNotification(senderName, evt.SenderUID, evt.Text)
	s.dispatcher.Dispatch(ctx, "message", recipientUID, recipient.FCMTokens, notification)
	return nil
}

// blockMessage applies the terminal blocked state: the message is redacted in
// place and the room carries the blocked preview. No notification is sent.
func (s *PipelineService) blockMessage(ctx context.Context, evt domain.ChatMessageCreatedEvent) error {
	log := s.logger.With("chat_id", evt.ChatID, "message_id", evt.MessageID)

	if err := s.chats.RedactMessage(ctx, evt.ChatID, evt.MessageID); err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			log.WarnContext(ctx, "Message to redact not found, nothing to do")
			invocationsDroppedCounter.WithLabelValues("missing_message").Inc()
			return nil
		}
		return fmt.Errorf("redacting blocked message: %w", err)
	}
	if err := s.chats.MarkRoomBlocked(ctx, evt.ChatID, evt.SenderUID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			log.WarnContext(ctx, "Room for blocked message not found")
		} else {
			return fmt.Errorf("marking room blocked: %w", err)
		}
	}

	messagesBlockedCounter.Inc()
	log.InfoContext(ctx, "Message blocked and redacted")
	return nil
}

// resolveDisplayName reads a member's display name, falling back to the
// generic placeholder when the profile is missing or unreadable. The name may
// be slightly newer or older than it was at send time; that is accepted.
func (s *PipelineService) resolveDisplayName(ctx context.Context, uid string) string {
	member, err := s.members.GetByUID(ctx, uid)
	if err != nil {
		if !errors.Is(err, domain.ErrMemberNotFound) {
			s.logger.WarnContext(ctx, "Failed to resolve display name", "uid", uid, "error", err)
		}
		return core_domain.FallbackDisplayName
	}
	return member.ResolvedDisplayName()
}
