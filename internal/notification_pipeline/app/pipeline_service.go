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
	"github.com/duetlabs/golang_services/internal/notification_pipeline/moderation"
	"github.com/duetlabs/golang_services/internal/platform/messagebroker"
)

// perEventTimeout bounds the processing of one document-mutation event.
const perEventTimeout = 60 * time.Second

// PipelineService consumes document-mutation events and runs the
// moderation-and-notification pipeline. Every handler is a stateless pure
// function of (current store state, event payload): the platform may deliver
// an event more than once and may run invocations concurrently, so nothing is
// kept between invocations.
type PipelineService struct {
	members    domain.MemberRepository
	chats      domain.ChatRepository
	policy     domain.BannedWordRepository
	classifier *moderation.Classifier
	dispatcher *Dispatcher
	natsClient *messagebroker.NATSClient
	validate   *validator.Validate
	logger     *slog.Logger

	messageSub *nats.Subscription
	profileSub *nats.Subscription
}

func NewPipelineService(
	members domain.MemberRepository,
	chats domain.ChatRepository,
	policy domain.BannedWordRepository,
	classifier *moderation.Classifier,
	dispatcher *Dispatcher,
	natsClient *messagebroker.NATSClient,
	logger *slog.Logger,
) *PipelineService {
	return &PipelineService{
		members:    members,
		chats:      chats,
		policy:     policy,
		classifier: classifier,
		dispatcher: dispatcher,
		natsClient: natsClient,
		validate:   validator.New(),
		logger:     logger.With("service", "notification_pipeline"),
	}
}

// StartConsuming subscribes to both trigger subjects with the given queue
// group so concurrently deployed instances share the stream.
func (s *PipelineService) StartConsuming(ctx context.Context, queueGroup string) error {
	if s.natsClient == nil {
		return errors.New("NATS client not initialized in PipelineService")
	}

	var err error
	s.messageSub, err = s.natsClient.SubscribeToSubjectWithQueue(ctx, domain.NATSChatMessageCreatedV1, queueGroup,
		s.eventHandler(domain.NATSChatMessageCreatedV1, s.handleMessageCreatedPayload))
	if err != nil {
		return err
	}

	s.profileSub, err = s.natsClient.SubscribeToSubjectWithQueue(ctx, domain.NATSMemberProfileUpdatedV1, queueGroup,
		s.eventHandler(domain.NATSMemberProfileUpdatedV1, s.handleProfileUpdatedPayload))
	if err != nil {
		return err
	}
	return nil
}

// eventHandler wraps a payload handler with the shared per-event plumbing:
// metrics, a correlation id, and a bounded processing context.
func (s *PipelineService) eventHandler(subject string, handle func(ctx context.Context, data []byte) error) nats.MsgHandler {
	return func(msg *nats.Msg) {
		natsEventsReceivedCounter.WithLabelValues(subject).Inc()

		invocationID := uuid.NewString()
		eventCtx, cancel := context.WithTimeout(context.Background(), perEventTimeout)
		defer cancel()

		log := s.logger.With("subject", msg.Subject, "invocation_id", invocationID)
		log.InfoContext(eventCtx, "Received document-mutation event", "data_len", len(msg.Data))

		if err := handle(eventCtx, msg.Data); err != nil {
			log.ErrorContext(eventCtx, "Failed to process event", "error", err)
		}
	}
}

func (s *PipelineService) handleMessageCreatedPayload(ctx context.Context, data []byte) error {
	var evt domain.ChatMessageCreatedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to unmarshal message-created event", "error", err, "data", string(data))
		invocationsDroppedCounter.WithLabelValues("malformed_payload").Inc()
		return nil // malformed payloads are dropped, not redelivered forever
	}
	if err := s.validate.Struct(&evt); err != nil {
		s.logger.ErrorContext(ctx, "Invalid message-created event", "error", err)
		invocationsDroppedCounter.WithLabelValues("malformed_payload").Inc()
		return nil
	}
	return s.processMessageCreated(ctx, evt)
}

func (s *PipelineService) handleProfileUpdatedPayload(ctx context.Context, data []byte) error {
	var evt domain.MemberProfileUpdatedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to unmarshal profile-updated event", "error", err, "data", string(data))
		invocationsDroppedCounter.WithLabelValues("malformed_payload").Inc()
		return nil
	}
	if err := s.validate.Struct(&evt); err != nil {
		s.logger.ErrorContext(ctx, "Invalid profile-updated event", "error", err)
		invocationsDroppedCounter.WithLabelValues("malformed_payload").Inc()
		return nil
	}
	return s.processProfileUpdated(ctx, evt)
}

// StopConsuming unsubscribes from both subjects.
func (s *PipelineService) StopConsuming() {
	for _, sub := range []*nats.Subscription{s.messageSub, s.profileSub} {
		if sub != nil && sub.IsValid() {
			s.logger.Info("Unsubscribing from NATS subject", "subject", sub.Subject)
			if err := sub.Unsubscribe(); err != nil {
				s.logger.Error("Failed to unsubscribe from NATS", "error", err, "subject", sub.Subject)
			}
		}
	}
}
