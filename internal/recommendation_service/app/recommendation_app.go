package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/duetlabs/golang_services/internal/core_domain"
	"github.com/duetlabs/golang_services/internal/notification_pipeline/domain"
)

// MaxRecommendations caps a single response. The pool is shuffled first, so
// repeated calls rotate through the candidates rather than pinning the same
// leading rows.
const MaxRecommendations = 50

var ErrRequesterProfileMissing = errors.New("requester profile not found")

// MemberDirectory is the slice of member storage this service reads.
type MemberDirectory interface {
	GetByUID(ctx context.Context, uid string) (*core_domain.MemberProfile, error)
	ListByGender(ctx context.Context, gender string) ([]core_domain.MemberProfile, error)
}

type RecommendationApp struct {
	members MemberDirectory
	logger  *slog.Logger
}

func NewRecommendationApp(members MemberDirectory, logger *slog.Logger) *RecommendationApp {
	return &RecommendationApp{
		members: members,
		logger:  logger.With("service", "recommendation_app"),
	}
}

// Recommendation is one suggested member. Only presentation fields leave the
// service; tokens and preference flags never do.
type Recommendation struct {
	UID         string
	Gender      string
	DisplayName string
}

// GetRecommendations returns a shuffled, capped list of opposite-gender
// members, excluding the requester and everyone they already matched with.
func (a *RecommendationApp) GetRecommendations(ctx context.Context, requesterUID string) ([]Recommendation, error) {
	requester, err := a.members.GetByUID(ctx, requesterUID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return nil, ErrRequesterProfileMissing
		}
		return nil, fmt.Errorf("loading requester profile: %w", err)
	}

	target := oppositeGender(requester.Gender)
	if target == "" {
		a.logger.WarnContext(ctx, "Requester has no recognizable gender, returning empty list",
			"uid", requesterUID, "gender", requester.Gender)
		return []Recommendation{}, nil
	}

	pool, err := a.members.ListByGender(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	matched := make(map[string]struct{}, len(requester.Matched))
	for _, uid := range requester.Matched {
		matched[uid] = struct{}{}
	}

	candidates := make([]Recommendation, 0, len(pool))
	for _, m := range pool {
		if m.UID == requesterUID {
			continue
		}
		if _, already := matched[m.UID]; already {
			continue
		}
		candidates = append(candidates, Recommendation{
			UID:         m.UID,
			Gender:      m.Gender,
			DisplayName: m.ResolvedDisplayName(),
		})
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if len(candidates) > MaxRecommendations {
		candidates = candidates[:MaxRecommendations]
	}

	a.logger.DebugContext(ctx, "Built recommendation list",
		"uid", requesterUID, "pool_size", len(pool), "returned", len(candidates))
	return candidates, nil
}

func oppositeGender(gender string) string {
	switch gender {
	case core_domain.GenderMale:
		return core_domain.GenderFemale
	case core_domain.GenderFemale:
		return core_domain.GenderMale
	default:
		return ""
	}
}
