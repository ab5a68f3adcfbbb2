package provider

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// MockPushProvider is a test implementation of PushProvider.
type MockPushProvider struct {
	logger *slog.Logger
	// FailAll makes SendMulticast return an error, simulating the delivery
	// service being unreachable.
	FailAll bool
	// NotRegisteredTokens marks specific tokens as permanently invalid.
	NotRegisteredTokens map[string]bool

	mu    sync.Mutex
	calls []MockSendCall
}

// MockSendCall records one SendMulticast invocation.
type MockSendCall struct {
	Tokens       []string
	Notification PushNotification
}

func NewMockPushProvider(logger *slog.Logger) *MockPushProvider {
	return &MockPushProvider{
		logger:              logger.With("provider", "mock"),
		NotRegisteredTokens: make(map[string]bool),
	}
}

func (p *MockPushProvider) SendMulticast(ctx context.Context, tokens []string, notification PushNotification) (*MulticastReport, error) {
	p.mu.Lock()
	p.calls = append(p.calls, MockSendCall{Tokens: append([]string(nil), tokens...), Notification: notification})
	p.mu.Unlock()

	if p.FailAll {
		return nil, errors.New("mock provider simulated total send failure")
	}

	report := &MulticastReport{Results: make([]SendResult, 0, len(tokens))}
	for _, token := range tokens {
		if p.NotRegisteredTokens[token] {
			report.FailureCount++
			report.Results = append(report.Results, SendResult{
				Token:         token,
				NotRegistered: true,
				ErrorMessage:  "Requested entity was not found.",
			})
			continue
		}
		report.SuccessCount++
		report.Results = append(report.Results, SendResult{Token: token, Success: true})
	}
	p.logger.DebugContext(ctx, "MockPushProvider: multicast simulated",
		"tokens", len(tokens), "success", report.SuccessCount)
	return report, nil
}

// Calls returns the recorded invocations.
func (p *MockPushProvider) Calls() []MockSendCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]MockSendCall(nil), p.calls...)
}

func (p *MockPushProvider) GetName() string {
	return "mock"
}
