package moderation

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClassifier() *Classifier {
	return NewClassifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClassify_StaticPatterns_BlockWithEmptyPolicy(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"PhoneWithDashes", "연락처는 010-1234-5678 입니다", true},
		{"PhoneWithoutSeparators", "call me 01012345678", true},
		{"PhoneWithDots", "011.345.6789", true},
		{"Email", "mail me at jane.doe+x@example.com ok?", true},
		{"Handle", "find me @jane_doe", true},
		{"HandleAtStart", "@jane_doe", true},
		{"InstagramLink", "instagram.com/jane.doe", true},
		{"KakaoLinkMixedCase", "KAKAO.com/JaneDoe", true},
		{"PlainText", "오늘 저녁에 영화 볼래요?", false},
		{"ShortNumber", "310-45", false},
		{"EmailWithoutTLD", "jane@localhost", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.text, nil))
		})
	}
}

func TestClassify_BannedWords(t *testing.T) {
	c := newTestClassifier()
	words := []string{"금지어", "badword"}

	assert.True(t, c.Classify("이건 금지어 포함", words))
	assert.True(t, c.Classify("this has a BADWORD in it", words), "matching is case-insensitive")
	assert.False(t, c.Classify("perfectly fine text", words))
}

func TestClassify_BannedWordsMatchLiterally(t *testing.T) {
	c := newTestClassifier()

	// A word containing pattern metacharacters must match only itself,
	// never as a pattern operator.
	words := []string{"a.b*c"}
	assert.True(t, c.Classify("contains a.b*c literally", words))
	assert.False(t, c.Classify("contains axbbbc which the unescaped pattern would match", words))
	assert.False(t, c.Classify("contains a.bc либо", words))
}

func TestClassify_EmptyInputs(t *testing.T) {
	c := newTestClassifier()

	assert.False(t, c.Classify("", []string{"word"}), "media-only messages are never blocked")
	assert.False(t, c.Classify("hello", []string{"", "  "}), "blank policy entries are ignored")
	assert.False(t, c.Classify("hello", nil))
}

func TestClassify_StaticBeatsEmptyDynamic(t *testing.T) {
	c := newTestClassifier()

	// Static families stay authoritative when the policy list is present.
	assert.True(t, c.Classify("010-1234-5678", []string{"unrelated"}))
}
