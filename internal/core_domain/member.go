package core_domain

// Member genders as stored by the client application.
const (
	GenderMale   = "남성"
	GenderFemale = "여성"
)

// FallbackDisplayName is used whenever a referenced member profile cannot be
// resolved; notifications are still delivered with a generic name.
const FallbackDisplayName = "누군가"

// MemberProfile is the member document as stored in the members table.
// The same shape is carried inside profile-mutation events as a point-in-time
// snapshot, so it doubles as the before/after type for change detection.
type MemberProfile struct {
	UID         string            `json:"uid" validate:"required"`
	Gender      string            `json:"gender"`
	DisplayName string            `json:"display_name"`
	FCMTokens   []string          `json:"fcm_tokens"`
	NotifyPrefs NotificationPrefs `json:"notify_prefs"`
	// Matched holds the uids of matched partners in insertion order.
	// Monotonically non-decreasing except for explicit unmatch actions,
	// which are handled outside the pipeline.
	Matched []string `json:"matched"`
	// LikeCounts maps a peer uid to the cumulative number of likes received
	// from that peer.
	LikeCounts map[string]int `json:"like_counts"`
}

// HasMatched reports whether peerUID is in the matched set.
func (m *MemberProfile) HasMatched(peerUID string) bool {
	for _, uid := range m.Matched {
		if uid == peerUID {
			return true
		}
	}
	return false
}

// ResolvedDisplayName returns the display name, or the generic fallback when
// the profile carries none.
func (m *MemberProfile) ResolvedDisplayName() string {
	if m == nil || m.DisplayName == "" {
		return FallbackDisplayName
	}
	return m.DisplayName
}
