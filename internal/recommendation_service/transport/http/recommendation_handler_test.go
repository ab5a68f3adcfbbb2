package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duetlabs/golang_services/internal/core_domain"
	pipelinedomain "github.com/duetlabs/golang_services/internal/notification_pipeline/domain"
	"github.com/duetlabs/golang_services/internal/recommendation_service/app"
	"github.com/duetlabs/golang_services/internal/recommendation_service/middleware"
)

const testAccessSecret = "test-secret"

// stubDirectory serves a fixed set of member profiles.
type stubDirectory struct {
	members map[string]*core_domain.MemberProfile
}

func (d *stubDirectory) GetByUID(_ context.Context, uid string) (*core_domain.MemberProfile, error) {
	m, ok := d.members[uid]
	if !ok {
		return nil, pipelinedomain.ErrMemberNotFound
	}
	return m, nil
}

func (d *stubDirectory) ListByGender(_ context.Context, gender string) ([]core_domain.MemberProfile, error) {
	var out []core_domain.MemberProfile
	for _, m := range d.members {
		if m.Gender == gender {
			out = append(out, *m)
		}
	}
	return out, nil
}

func newTestRouter(t *testing.T, dir *stubDirectory) *chi.Mux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewRecommendationHandler(app.NewRecommendationApp(dir, logger), logger)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(testAccessSecret, logger))
		handler.RegisterRoutes(r)
	})
	return r
}

func signedToken(t *testing.T, uid, secret string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": uid,
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestRecommendationHandler_GetRecommendations(t *testing.T) {
	dir := &stubDirectory{members: map[string]*core_domain.MemberProfile{
		"me": {UID: "me", Gender: core_domain.GenderMale, Matched: []string{"f1"}},
		"f0": {UID: "f0", Gender: core_domain.GenderFemale, DisplayName: "수지"},
		"f1": {UID: "f1", Gender: core_domain.GenderFemale, DisplayName: "지은"},
	}}
	router := newTestRouter(t, dir)

	t.Run("ReturnsRecommendations", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/recommendations", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, "me", testAccessSecret))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp RecommendationsResponseDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "f0", resp.Recommendations[0].UID)
		assert.Equal(t, "수지", resp.Recommendations[0].DisplayName)
	})

	t.Run("MissingAuthorizationHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/recommendations", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("WrongSigningSecret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/recommendations", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, "me", "other-secret"))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub": "me",
			"exp": time.Now().Add(-time.Hour).Unix(),
			"iat": time.Now().Add(-2 * time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAccessSecret))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/recommendations", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("UnknownMemberGets404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/recommendations", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, "nobody", testAccessSecret))
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
