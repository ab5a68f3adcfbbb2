package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duetlabs/golang_services/internal/notification_pipeline/domain"
)

func TestComposeMatchNotification(t *testing.T) {
	n := ComposeMatchNotification("수지")

	assert.Equal(t, "새로운 매칭! 💕", n.Title)
	assert.Equal(t, "수지님과 매칭되었습니다!", n.Body)
	assert.Equal(t, "/matches", n.Link)
	assert.NotEmpty(t, n.Icon)
	assert.NotEmpty(t, n.Badge)
}

func TestComposeLikeNotification(t *testing.T) {
	n := ComposeLikeNotification("수지")

	assert.Equal(t, "새로운 좋아요 💗", n.Title)
	assert.Equal(t, "수지님이 회원님을 좋아합니다.", n.Body)
	assert.Equal(t, "/likes", n.Link)
}

func TestComposeMessageNotification(t *testing.T) {
	t.Run("WithText", func(t *testing.T) {
		n := ComposeMessageNotification("수지", "uid-b", "저녁 먹었어요?")

		assert.Equal(t, "수지님", n.Title)
		assert.Equal(t, "저녁 먹었어요?", n.Body)
		assert.Equal(t, "/chat/uid-b", n.Link)
	})

	t.Run("MediaOnly", func(t *testing.T) {
		n := ComposeMessageNotification("수지", "uid-b", "")

		assert.Equal(t, domain.MediaMessageBody, n.Body)
	})
}
