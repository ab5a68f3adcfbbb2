package domain

// ProfileEventKind names the high-value events detectable from a profile diff.
type ProfileEventKind string

const (
	ProfileEventMatch ProfileEventKind = "match"
	ProfileEventLike  ProfileEventKind = "like"
)

// ProfileEvent is one semantically meaningful event derived from a
// before/after pair of member snapshots.
type ProfileEvent struct {
	Kind    ProfileEventKind
	PeerUID string
}
