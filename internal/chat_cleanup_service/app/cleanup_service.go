package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/duetlabs/golang_services/internal/notification_pipeline/domain"
	"github.com/duetlabs/golang_services/internal/platform/messagebroker"
)

const (
	// deleteBatchSize bounds one DELETE statement so a huge room cannot hold
	// locks for the whole purge.
	deleteBatchSize = 500

	perEventTimeout = 60 * time.Second
)

// CleanupService purges the message history of deleted chat rooms. Deletion
// runs in fixed-size batches and is idempotent: a redelivered event finds
// nothing left to delete and stops after one empty batch.
type CleanupService struct {
	chats      domain.ChatRepository
	natsClient *messagebroker.NATSClient
	validate   *validator.Validate
	logger     *slog.Logger

	roomDeletedSub *nats.Subscription
}

func NewCleanupService(chats domain.ChatRepository, natsClient *messagebroker.NATSClient, logger *slog.Logger) *CleanupService {
	return &CleanupService{
		chats:      chats,
		natsClient: natsClient,
		validate:   validator.New(),
		logger:     logger.With("service", "chat_cleanup"),
	}
}

// StartConsuming subscribes to room-deleted events with the given queue group.
func (s *CleanupService) StartConsuming(ctx context.Context, queueGroup string) error {
	if s.natsClient == nil {
		return errors.New("NATS client not initialized in CleanupService")
	}

	var err error
	s.roomDeletedSub, err = s.natsClient.SubscribeToSubjectWithQueue(ctx, domain.NATSChatRoomDeletedV1, queueGroup, s.handleRoomDeleted)
	return err
}

func (s *CleanupService) handleRoomDeleted(msg *nats.Msg) {
	roomDeletedEventsCounter.Inc()

	invocationID := uuid.NewString()
	eventCtx, cancel := context.WithTimeout(context.Background(), perEventTimeout)
	defer cancel()

	log := s.logger.With("subject", msg.Subject, "invocation_id", invocationID)

	var evt domain.ChatRoomDeletedEvent
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		log.ErrorContext(eventCtx, "Failed to unmarshal room-deleted event", "error", err, "data", string(msg.Data))
		return
	}
	if err := s.validate.Struct(&evt); err != nil {
		log.ErrorContext(eventCtx, "Invalid room-deleted event", "error", err)
		return
	}

	if err := s.PurgeRoomMessages(eventCtx, evt.ChatID); err != nil {
		log.ErrorContext(eventCtx, "Failed to purge room messages", "error", err, "chat_id", evt.ChatID)
	}
}

// PurgeRoomMessages deletes the room's messages batch by batch until a batch
// comes back empty.
func (s *CleanupService) PurgeRoomMessages(ctx context.Context, chatID string) error {
	var total int64
	for {
		deleted, err := s.chats.DeleteMessagesBatch(ctx, chatID, deleteBatchSize)
		if err != nil {
			return err
		}
		if deleted == 0 {
			break
		}
		total += deleted
		messagesPurgedCounter.Add(float64(deleted))
	}

	s.logger.InfoContext(ctx, "Purged messages of deleted room", "chat_id", chatID, "deleted", total)
	return nil
}

// StopConsuming unsubscribes from the room-deleted subject.
func (s *CleanupService) StopConsuming() {
	if s.roomDeletedSub != nil && s.roomDeletedSub.IsValid() {
		s.logger.Info("Unsubscribing from NATS subject", "subject", s.roomDeletedSub.Subject)
		if err := s.roomDeletedSub.Unsubscribe(); err != nil {
			s.logger.Error("Failed to unsubscribe from NATS", "error", err, "subject", s.roomDeletedSub.Subject)
		}
	}
}
