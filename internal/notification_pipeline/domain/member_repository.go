package domain

import (
	"context"
	"errors"

	"github.com/duetlabs/golang_services/internal/core_domain"
)

var ErrMemberNotFound = errors.New("member profile not found")

// MemberRepository is the pipeline's access to member documents. The pipeline
// only ever reads profiles and prunes delivery tokens; every other member
// write belongs to the application.
type MemberRepository interface {
	GetByUID(ctx context.Context, uid string) (*core_domain.MemberProfile, error)

	// RemoveTokens removes exactly the given tokens from the member's token
	// list. Implementations must diff against the list as it exists at
	// removal time, not a caller-held snapshot, so a token registered
	// concurrently with a send is never lost.
	RemoveTokens(ctx context.Context, uid string, tokens []string) error
}
