package app

import (
	"context"

	"github.com/duetlabs/golang_services/internal/notification_pipeline/domain"
	"github.com/duetlabs/golang_services/internal/notification_pipeline/provider"
)

// processProfileUpdated runs the profile pipeline: diff the before/after
// snapshots and dispatch one notification per detected event. The detector is
// deterministic over its inputs, so redelivery of the same snapshot pair
// yields the same events; downstream delivery tolerates duplicates.
func (s *PipelineService) processProfileUpdated(ctx context.Context, evt domain.MemberProfileUpdatedEvent) error {
	log := s.logger.With("uid", evt.UID)

	events := DetectProfileEvents(evt.Before, evt.After)
	if len(events) == 0 {
		log.DebugContext(ctx, "No notifiable profile events detected")
		return nil
	}

	for _, event := range events {
		peerName := s.resolveDisplayName(ctx, event.PeerUID)

		var notification provider.PushNotification
		switch event.Kind {
		case domain.ProfileEventMatch:
			notification = ComposeMatchNotification(peerName)
		case domain.ProfileEventLike:
			notification = ComposeLikeNotification(peerName)
		default:
			log.WarnContext(ctx, "Unknown profile event kind", "kind", event.Kind)
			continue
		}

		log.InfoContext(ctx, "Dispatching profile event notification",
			"kind", event.Kind, "peer_uid", event.PeerUID)
		s.dispatcher.Dispatch(ctx, string(event.Kind), evt.UID, evt.After.FCMTokens, notification)
	}
	return nil
}
