package domain

import "context"

// BannedWordRepository provides the dynamically managed banned-word list used
// by the content classifier. The list is plain data supplied by operators;
// duplicates are harmless and order carries no meaning.
type BannedWordRepository interface {
	GetActiveBannedWords(ctx context.Context) ([]string, error)
}
