package core_domain

// Notification categories a member can opt out of.
const (
	PrefCategoryChats   = "chats"
	PrefCategoryMatches = "matches"
	PrefCategoryLikes   = "likes"
)

// PrefState is the tri-state of a notification preference flag. Member
// documents historically omitted flags entirely, so absence must be
// distinguishable from an explicit value.
type PrefState int

const (
	PrefUnset PrefState = iota
	PrefEnabled
	PrefDisabled
)

// NotificationPrefs maps a category to an optional flag. A nil entry or a
// missing key is PrefUnset.
type NotificationPrefs map[string]*bool

// State returns the tri-state for the given category.
func (p NotificationPrefs) State(category string) PrefState {
	if p == nil {
		return PrefUnset
	}
	v, ok := p[category]
	if !ok || v == nil {
		return PrefUnset
	}
	if *v {
		return PrefEnabled
	}
	return PrefDisabled
}

// Allows is the single default-resolution rule for preference flags:
// a category is enabled unless explicitly disabled.
func (p NotificationPrefs) Allows(category string) bool {
	return p.State(category) != PrefDisabled
}
