package moderation

import (
	"log/slog"
	"regexp"
	"strings"
)

// The static layer blocks contact-information leakage regardless of the
// operator-managed word list. Each family alone is authoritative; evaluation
// short-circuits on the first hit purely as an optimization.
var staticPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	// Korean mobile numbers, with or without separators: 010-1234-5678,
	// 01012345678, 011.345.6789 etc.
	{"phone", regexp.MustCompile(`01[016789][-.\s]?\d{3,4}[-.\s]?\d{4}`)},
	{"email", regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+\.[A-Za-z]{2,}`)},
	// Social handles: "@name" tokens and "platform.com/name" style links.
	{"handle", regexp.MustCompile(`(?:^|\s)@[A-Za-z0-9_.]{2,}`)},
	{"social_link", regexp.MustCompile(`(?i)(?:instagram|facebook|twitter|tiktok|kakao|x)\.(?:com|me)/[A-Za-z0-9_.]+`)},
}

// Classifier decides whether message text violates policy. It is stateless
// apart from the precompiled static patterns; the dynamic word list is passed
// per call because it changes between invocations.
type Classifier struct {
	logger *slog.Logger
}

func NewClassifier(logger *slog.Logger) *Classifier {
	return &Classifier{logger: logger.With("component", "content_classifier")}
}

// Classify reports whether text is blocked under the static pattern families
// combined with the supplied banned-word list. An empty text (media-only
// message) is never blocked. A nil or empty word list degrades to
// static-only classification.
func (c *Classifier) Classify(text string, bannedWords []string) bool {
	if text == "" {
		return false
	}

	for _, p := range staticPatterns {
		if p.re.MatchString(text) {
			c.logger.Debug("Static pattern matched", "family", p.name)
			return true
		}
	}

	re := compileBannedWords(bannedWords, c.logger)
	if re == nil {
		return false
	}
	if re.MatchString(text) {
		c.logger.Debug("Banned word matched")
		return true
	}
	return false
}

// compileBannedWords builds a single case-insensitive alternation from the
// word list. Every word is escaped so pattern metacharacters match literally.
// Word-boundary anchors are deliberately not used: \b only understands ASCII
// word characters and would never match around Hangul, so matching is plain
// substring containment.
func compileBannedWords(words []string, logger *slog.Logger) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) == 0 {
		return nil
	}

	re, err := regexp.Compile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
	if err != nil {
		// QuoteMeta makes this unreachable in practice; degrade to
		// static-only rather than failing the triggering event.
		logger.Warn("Failed to compile banned-word pattern", "error", err)
		return nil
	}
	return re
}
