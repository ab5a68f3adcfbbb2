package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetlabs/golang_services/internal/notification_pipeline/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPgMemberRepository_GetByUID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgMemberRepository(mockPool, discardLogger())

		rows := mockPool.NewRows([]string{"uid", "gender", "display_name", "fcm_tokens", "notify_prefs", "matched", "like_counts"}).
			AddRow("A", "여성", "지은",
				[]byte(`["t1","t2"]`),
				[]byte(`{"likes":false}`),
				[]byte(`["B"]`),
				[]byte(`{"B":2,"C":1}`))

		mockPool.ExpectQuery(`SELECT uid, gender, display_name`).
			WithArgs("A").
			WillReturnRows(rows)

		member, err := repo.GetByUID(context.Background(), "A")
		require.NoError(t, err)
		assert.Equal(t, "A", member.UID)
		assert.Equal(t, "지은", member.DisplayName)
		assert.Equal(t, []string{"t1", "t2"}, member.FCMTokens)
		assert.Equal(t, []string{"B"}, member.Matched)
		assert.Equal(t, map[string]int{"B": 2, "C": 1}, member.LikeCounts)
		assert.False(t, member.NotifyPrefs.Allows("likes"))
		assert.True(t, member.NotifyPrefs.Allows("matches"), "absent flag means enabled")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgMemberRepository(mockPool, discardLogger())

		mockPool.ExpectQuery(`SELECT uid, gender, display_name`).
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.GetByUID(context.Background(), "ghost")
		assert.ErrorIs(t, err, domain.ErrMemberNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPgMemberRepository_ListByGender(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgMemberRepository(mockPool, discardLogger())

	rows := mockPool.NewRows([]string{"uid", "gender", "display_name", "fcm_tokens", "notify_prefs", "matched", "like_counts"}).
		AddRow("B", "남성", "민준", []byte(`[]`), []byte(`{}`), []byte(`[]`), []byte(`{}`)).
		AddRow("C", "남성", "하늘", []byte(`[]`), []byte(`{}`), []byte(`[]`), []byte(`{}`))

	mockPool.ExpectQuery(`SELECT uid, gender, display_name`).
		WithArgs("남성").
		WillReturnRows(rows)

	members, err := repo.ListByGender(context.Background(), "남성")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "B", members[0].UID)
	assert.Equal(t, "C", members[1].UID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgMemberRepository_RemoveTokens(t *testing.T) {
	t.Run("RemovesExactlyTheGivenTokens", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgMemberRepository(mockPool, discardLogger())

		mockPool.ExpectBegin()
		// The row as re-read at removal time contains t4, added after the
		// send was initiated; it must survive the prune.
		mockPool.ExpectQuery(`SELECT COALESCE\(fcm_tokens`).
			WithArgs("A").
			WillReturnRows(mockPool.NewRows([]string{"fcm_tokens"}).AddRow([]byte(`["t1","t2","t3","t4"]`)))
		mockPool.ExpectExec(`UPDATE members SET fcm_tokens`).
			WithArgs(`["t1","t3","t4"]`, "A").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectCommit()
		mockPool.ExpectRollback()

		err = repo.RemoveTokens(context.Background(), "A", []string{"t2"})
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("EmptyTokenListIsNoOp", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgMemberRepository(mockPool, discardLogger())

		require.NoError(t, repo.RemoveTokens(context.Background(), "A", nil))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("MemberGone", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgMemberRepository(mockPool, discardLogger())

		mockPool.ExpectBegin()
		mockPool.ExpectQuery(`SELECT COALESCE\(fcm_tokens`).
			WithArgs("ghost").
			WillReturnError(pgx.ErrNoRows)
		mockPool.ExpectRollback()

		err = repo.RemoveTokens(context.Background(), "ghost", []string{"t1"})
		assert.ErrorIs(t, err, domain.ErrMemberNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewPgMemberRepository(mockPool, discardLogger())
		dbErr := errors.New("connection reset")

		mockPool.ExpectBegin()
		mockPool.ExpectQuery(`SELECT COALESCE\(fcm_tokens`).
			WithArgs("A").
			WillReturnError(dbErr)
		mockPool.ExpectRollback()

		err = repo.RemoveTokens(context.Background(), "A", []string{"t1"})
		assert.ErrorContains(t, err, "connection reset")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
