package app

import (
	"sort"

	"github.com/duetlabs/golang_services/internal/core_domain"
	"github.com/duetlabs/golang_services/internal/notification_pipeline/domain"
)

// DetectProfileEvents diffs a before/after pair of member snapshots and
// returns the high-value events that occurred in that write. It is a pure
// function of its inputs: the same pair always yields the same events, which
// is what makes at-least-once redelivery of the trigger safe.
//
// Policy for simultaneous multi-peer changes in a single write: only the
// first new matched peer and the first non-suppressed liking peer are
// reported. One write normally carries one action, so additional peers in the
// same write are intentionally dropped rather than fanned out.
func DetectProfileEvents(before, after *core_domain.MemberProfile) []domain.ProfileEvent {
	if before == nil || after == nil {
		return nil
	}
	// No tokens, no deliverable notification; skip detection entirely.
	if len(after.FCMTokens) == 0 {
		return nil
	}

	var events []domain.ProfileEvent

	if after.NotifyPrefs.Allows(core_domain.PrefCategoryMatches) {
		if peer, ok := detectNewMatch(before, after); ok {
			events = append(events, domain.ProfileEvent{Kind: domain.ProfileEventMatch, PeerUID: peer})
		}
	}

	if after.NotifyPrefs.Allows(core_domain.PrefCategoryLikes) {
		if peer, ok := detectNewLike(before, after); ok {
			events = append(events, domain.ProfileEvent{Kind: domain.ProfileEventLike, PeerUID: peer})
		}
	}

	return events
}

// detectNewMatch reports the first uid present in after.Matched but absent
// from before.Matched, provided the matched set actually grew.
func detectNewMatch(before, after *core_domain.MemberProfile) (string, bool) {
	if len(after.Matched) <= len(before.Matched) {
		return "", false
	}
	seen := make(map[string]struct{}, len(before.Matched))
	for _, uid := range before.Matched {
		seen[uid] = struct{}{}
	}
	for _, uid := range after.Matched {
		if _, ok := seen[uid]; !ok {
			return uid, true
		}
	}
	return "", false
}

// detectNewLike reports the first peer whose cumulative like count strictly
// increased, skipping peers already in after.Matched: a like that immediately
// produced a match surfaces only the match notification. Candidates are
// visited in sorted uid order so the choice is deterministic.
func detectNewLike(before, after *core_domain.MemberProfile) (string, bool) {
	peers := make([]string, 0, len(after.LikeCounts))
	for uid := range after.LikeCounts {
		peers = append(peers, uid)
	}
	sort.Strings(peers)

	for _, uid := range peers {
		if after.LikeCounts[uid] <= before.LikeCounts[uid] {
			continue
		}
		if after.HasMatched(uid) {
			continue
		}
		return uid, true
	}
	return "", false
}
