package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/duetlabs/golang_services/internal/notification_pipeline/repository"
)

// PgBannedWordRepository serves the operator-managed banned-word list.
type PgBannedWordRepository struct {
	db     repository.PgxIface
	logger *slog.Logger
}

func NewPgBannedWordRepository(db repository.PgxIface, logger *slog.Logger) *PgBannedWordRepository {
	return &PgBannedWordRepository{db: db, logger: logger.With("component", "banned_word_repository_pg")}
}

func (r *PgBannedWordRepository) GetActiveBannedWords(ctx context.Context) ([]string, error) {
	query := `SELECT word FROM banned_words WHERE is_active = TRUE`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying active banned words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("scanning banned word row: %w", err)
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating banned word rows: %w", err)
	}

	r.logger.DebugContext(ctx, "Fetched active banned words", "count", len(words))
	return words, nil
}
