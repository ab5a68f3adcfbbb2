package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/duetlabs/golang_services/internal/recommendation_service/app"
	"github.com/duetlabs/golang_services/internal/recommendation_service/middleware"
)

// RecommendationHandler serves the member recommendation endpoint.
type RecommendationHandler struct {
	recommendations *app.RecommendationApp
	logger          *slog.Logger
}

func NewRecommendationHandler(recommendations *app.RecommendationApp, logger *slog.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations: recommendations,
		logger:          logger,
	}
}

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("Failed to write JSON response", "error", err)
		}
	}
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// RegisterRoutes sets up the routing for recommendation operations.
func (h *RecommendationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/recommendations", h.GetRecommendations)
}

func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid := middleware.AuthenticatedUID(ctx)
	if uid == "" {
		h.logger.ErrorContext(ctx, "Authenticated UID not found in context. AuthMiddleware must run first.")
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	recs, err := h.recommendations.GetRecommendations(ctx, uid)
	if err != nil {
		if errors.Is(err, app.ErrRequesterProfileMissing) {
			respondWithError(w, http.StatusNotFound, "Member profile not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to build recommendations", "error", err, "uid", uid)
		respondWithError(w, http.StatusInternalServerError, "Failed to get recommendations")
		return
	}

	responseDTOs := make([]RecommendationDTO, len(recs))
	for i, rec := range recs {
		responseDTOs[i] = RecommendationDTO{
			UID:         rec.UID,
			Gender:      rec.Gender,
			DisplayName: rec.DisplayName,
		}
	}
	respondWithJSON(w, http.StatusOK, RecommendationsResponseDTO{
		Recommendations: responseDTOs,
		Count:           len(responseDTOs),
	})
}
