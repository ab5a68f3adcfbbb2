package app

import (
	"github.com/duetlabs/golang_services/internal/notification_pipeline/domain"
	"github.com/duetlabs/golang_services/internal/notification_pipeline/provider"
)

// Web-push asset references baked into every notification.
const (
	notificationIcon  = "/icons/icon-192.png"
	notificationBadge = "/icons/badge-72.png"
)

// ComposeMatchNotification builds the payload for a new match with peerName.
func ComposeMatchNotification(peerName string) provider.PushNotification {
	return provider.PushNotification{
		Title: "새로운 매칭! 💕",
		Body:  peerName + "님과 매칭되었습니다!",
		Icon:  notificationIcon,
		Badge: notificationBadge,
		Link:  "/matches",
	}
}

// ComposeLikeNotification builds the payload for a new like from peerName.
func ComposeLikeNotification(peerName string) provider.PushNotification {
	return provider.PushNotification{
		Title: "새로운 좋아요 💗",
		Body:  peerName + "님이 회원님을 좋아합니다.",
		Icon:  notificationIcon,
		Badge: notificationBadge,
		Link:  "/likes",
	}
}

// ComposeMessageNotification builds the payload for a new chat message.
// Media-only messages get a fixed body.
func ComposeMessageNotification(senderName, senderUID, text string) provider.PushNotification {
	body := text
	if body == "" {
		body = domain.MediaMessageBody
	}
	return provider.PushNotification{
		Title: senderName + "님",
		Body:  body,
		Icon:  notificationIcon,
		Badge: notificationBadge,
		Link:  "/chat/" + senderUID,
	}
}
