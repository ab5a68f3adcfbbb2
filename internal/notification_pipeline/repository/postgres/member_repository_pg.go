package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/duetlabs/golang_services/internal/core_domain"
	"github.com/duetlabs/golang_services/internal/notification_pipeline/domain"
	"github.com/duetlabs/golang_services/internal/notification_pipeline/repository"
)

// PgMemberRepository reads member documents and prunes delivery tokens.
// The document-shaped fields live in JSONB columns.
type PgMemberRepository struct {
	db     repository.PgxIface
	logger *slog.Logger
}

func NewPgMemberRepository(db repository.PgxIface, logger *slog.Logger) *PgMemberRepository {
	return &PgMemberRepository{db: db, logger: logger.With("component", "member_repository_pg")}
}

const memberColumns = `uid, gender, display_name,
       COALESCE(fcm_tokens, '[]'::jsonb),
       COALESCE(notify_prefs, '{}'::jsonb),
       COALESCE(matched, '[]'::jsonb),
       COALESCE(like_counts, '{}'::jsonb)`

func (r *PgMemberRepository) GetByUID(ctx context.Context, uid string) (*core_domain.MemberProfile, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE uid = $1`

	row := r.db.QueryRow(ctx, query, uid)
	member, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, fmt.Errorf("querying member %s: %w", uid, err)
	}
	return member, nil
}

// ListByGender returns all member profiles of the given gender. Used by the
// recommendation service; the result set is small enough to scan whole.
func (r *PgMemberRepository) ListByGender(ctx context.Context, gender string) ([]core_domain.MemberProfile, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE gender = $1`

	rows, err := r.db.Query(ctx, query, gender)
	if err != nil {
		return nil, fmt.Errorf("querying members by gender: %w", err)
	}
	defer rows.Close()

	var members []core_domain.MemberProfile
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning member row: %w", err)
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating member rows: %w", err)
	}
	return members, nil
}

// RemoveTokens removes exactly the given tokens from the member's list. The
// current list is re-read under a row lock so a token added concurrently
// between send and cleanup is never lost.
func (r *PgMemberRepository) RemoveTokens(ctx context.Context, uid string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning token-prune transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var rawTokens []byte
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(fcm_tokens, '[]'::jsonb) FROM members WHERE uid = $1 FOR UPDATE`,
		uid).Scan(&rawTokens)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrMemberNotFound
		}
		return fmt.Errorf("reading current tokens for %s: %w", uid, err)
	}

	var current []string
	if err := json.Unmarshal(rawTokens, &current); err != nil {
		return fmt.Errorf("decoding tokens for %s: %w", uid, err)
	}

	remove := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		remove[t] = struct{}{}
	}
	remaining := make([]string, 0, len(current))
	for _, t := range current {
		if _, gone := remove[t]; !gone {
			remaining = append(remaining, t)
		}
	}

	updated, err := json.Marshal(remaining)
	if err != nil {
		return fmt.Errorf("encoding tokens for %s: %w", uid, err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE members SET fcm_tokens = $1::jsonb, updated_at = now() WHERE uid = $2`,
		string(updated), uid)
	if err != nil {
		return fmt.Errorf("updating tokens for %s: %w", uid, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing token prune for %s: %w", uid, err)
	}

	r.logger.InfoContext(ctx, "Pruned delivery tokens",
		"uid", uid, "removed", len(current)-len(remaining), "remaining", len(remaining))
	return nil
}

// scanMember decodes one member row; works for both QueryRow and Query rows.
func scanMember(row pgx.Row) (*core_domain.MemberProfile, error) {
	var (
		m          core_domain.MemberProfile
		rawTokens  []byte
		rawPrefs   []byte
		rawMatched []byte
		rawLikes   []byte
	)
	if err := row.Scan(&m.UID, &m.Gender, &m.DisplayName, &rawTokens, &rawPrefs, &rawMatched, &rawLikes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawTokens, &m.FCMTokens); err != nil {
		return nil, fmt.Errorf("decoding fcm_tokens: %w", err)
	}
	if err := json.Unmarshal(rawPrefs, &m.NotifyPrefs); err != nil {
		return nil, fmt.Errorf("decoding notify_prefs: %w", err)
	}
	if err := json.Unmarshal(rawMatched, &m.Matched); err != nil {
		return nil, fmt.Errorf("decoding matched: %w", err)
	}
	if err := json.Unmarshal(rawLikes, &m.LikeCounts); err != nil {
		return nil, fmt.Errorf("decoding like_counts: %w", err)
	}
	return &m, nil
}
