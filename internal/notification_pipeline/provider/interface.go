package provider

import "context"

// PushNotification is the composed delivery payload sent to every token of a
// recipient.
type PushNotification struct {
	Title string
	Body  string
	Icon  string
	Badge string
	// Link is the deep-link path the client opens on notification click.
	Link string
}

// SendResult is the per-token outcome of one fan-out.
type SendResult struct {
	Token   string
	Success bool
	// NotRegistered marks the token as permanently invalid: the delivery
	// service reports it can never receive messages again. Transient
	// failures (rate limiting, network) leave this false.
	NotRegistered bool
	ErrorMessage  string
}

// MulticastReport aggregates the outcomes of one fan-out call.
type MulticastReport struct {
	SuccessCount int
	FailureCount int
	Results      []SendResult
}

// InvalidTokens returns the tokens reported permanently invalid.
func (r *MulticastReport) InvalidTokens() []string {
	var invalid []string
	for _, res := range r.Results {
		if res.NotRegistered {
			invalid = append(invalid, res.Token)
		}
	}
	return invalid
}

// PushProvider delivers one notification to many tokens. Implementations must
// tolerate partial success: some tokens succeed while others fail within a
// single call. A non-nil error means the call as a whole could not be made.
type PushProvider interface {
	SendMulticast(ctx context.Context, tokens []string, notification PushNotification) (*MulticastReport, error)
	GetName() string
}
