package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/duetlabs/golang_services/internal/notification_pipeline/provider"
)

func newTestDispatcher() (*Dispatcher, *provider.MockPushProvider, *MockMemberRepository) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	push := provider.NewMockPushProvider(logger)
	members := new(MockMemberRepository)
	return NewDispatcher(push, members, logger), push, members
}

func TestDispatch_AllTokensSucceed(t *testing.T) {
	d, push, members := newTestDispatcher()

	d.Dispatch(context.Background(), "message", "B", []string{"t1", "t2"}, provider.PushNotification{Title: "hi"})

	require.Len(t, push.Calls(), 1)
	members.AssertNotCalled(t, "RemoveTokens", mock.Anything, mock.Anything, mock.Anything)
}

// Dispatch to 3 tokens where one is reported not-registered removes exactly
// that token (end-to-end scenario for partial failure).
func TestDispatch_PrunesExactlyTheInvalidSubset(t *testing.T) {
	d, push, members := newTestDispatcher()
	ctx := context.Background()

	push.NotRegisteredTokens["t2"] = true
	members.On("RemoveTokens", ctx, "B", []string{"t2"}).Return(nil)

	d.Dispatch(ctx, "message", "B", []string{"t1", "t2", "t3"}, provider.PushNotification{})

	members.AssertExpectations(t)
}

func TestDispatch_MultipleInvalidTokens(t *testing.T) {
	d, push, members := newTestDispatcher()
	ctx := context.Background()

	push.NotRegisteredTokens["t1"] = true
	push.NotRegisteredTokens["t3"] = true
	members.On("RemoveTokens", ctx, "B", []string{"t1", "t3"}).Return(nil)

	d.Dispatch(ctx, "match", "B", []string{"t1", "t2", "t3"}, provider.PushNotification{})

	members.AssertExpectations(t)
}

func TestDispatch_TotalFailureSwallowedNoPrune(t *testing.T) {
	d, push, members := newTestDispatcher()

	push.FailAll = true
	d.Dispatch(context.Background(), "message", "B", []string{"t1"}, provider.PushNotification{})

	members.AssertNotCalled(t, "RemoveTokens", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_PruneFailureSwallowed(t *testing.T) {
	d, push, members := newTestDispatcher()
	ctx := context.Background()

	push.NotRegisteredTokens["t1"] = true
	members.On("RemoveTokens", ctx, "B", []string{"t1"}).Return(assert.AnError)

	// Must not panic or propagate; the tokens surface again on the next send.
	d.Dispatch(ctx, "like", "B", []string{"t1"}, provider.PushNotification{})

	members.AssertExpectations(t)
}

func TestDispatch_NoTokensNoCall(t *testing.T) {
	d, push, _ := newTestDispatcher()

	d.Dispatch(context.Background(), "message", "B", nil, provider.PushNotification{})

	assert.Empty(t, push.Calls())
}
