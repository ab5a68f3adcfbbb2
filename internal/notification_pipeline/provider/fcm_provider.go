package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

// fanOutConcurrency caps in-flight delivery requests per multicast call.
const fanOutConcurrency = 8

var pushProviderRequestDurationHist = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "notification_pipeline",
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of one full multicast call to the push provider.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"provider_name"},
)

// FCMProvider sends web-push notifications through the FCM HTTP v1 API, one
// request per token.
type FCMProvider struct {
	logger     *slog.Logger
	httpClient *http.Client
	endpoint   string
	authToken  string
}

func NewFCMProvider(logger *slog.Logger, endpoint, authToken string, httpClient *http.Client) *FCMProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &FCMProvider{
		logger:     logger.With("provider", "fcm"),
		httpClient: httpClient,
		endpoint:   endpoint,
		authToken:  authToken,
	}
}

// fcmSendRequest is the FCM HTTP v1 message envelope.
type fcmSendRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string          `json:"token"`
	Notification fcmNotification `json:"notification"`
	Webpush      fcmWebpush      `json:"webpush"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmWebpush struct {
	Notification fcmWebpushNotification `json:"notification"`
	FCMOptions   fcmWebpushOptions      `json:"fcm_options"`
}

type fcmWebpushNotification struct {
	Icon  string `json:"icon,omitempty"`
	Badge string `json:"badge,omitempty"`
}

type fcmWebpushOptions struct {
	Link string `json:"link,omitempty"`
}

// fcmErrorResponse is the subset of the FCM error body needed to distinguish
// permanently invalid registrations from transient failures.
type fcmErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SendMulticast delivers the notification to every token concurrently and
// reports per-token outcomes. It never returns an error for per-token
// failures; the error return covers only request-construction problems.
func (p *FCMProvider) SendMulticast(ctx context.Context, tokens []string, notification PushNotification) (*MulticastReport, error) {
	timer := prometheus.NewTimer(pushProviderRequestDurationHist.WithLabelValues(p.GetName()))
	defer timer.ObserveDuration()

	results := make([]SendResult, len(tokens))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutConcurrency)
	for i, token := range tokens {
		i, token := i, token
		g.Go(func() error {
			results[i] = p.sendOne(gctx, token, notification)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	report := &MulticastReport{Results: results}
	for _, res := range results {
		if res.Success {
			report.SuccessCount++
		} else {
			report.FailureCount++
		}
	}
	p.logger.DebugContext(ctx, "FCM multicast finished",
		"tokens", len(tokens), "success", report.SuccessCount, "failure", report.FailureCount)
	return report, nil
}

func (p *FCMProvider) sendOne(ctx context.Context, token string, notification PushNotification) SendResult {
	reqBody := fcmSendRequest{
		Message: fcmMessage{
			Token: token,
			Notification: fcmNotification{
				Title: notification.Title,
				Body:  notification.Body,
			},
			Webpush: fcmWebpush{
				Notification: fcmWebpushNotification{
					Icon:  notification.Icon,
					Badge: notification.Badge,
				},
				FCMOptions: fcmWebpushOptions{Link: notification.Link},
			},
		},
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return SendResult{Token: token, ErrorMessage: fmt.Sprintf("marshal FCM request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return SendResult{Token: token, ErrorMessage: fmt.Sprintf("build FCM request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.authToken)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return SendResult{Token: token, ErrorMessage: fmt.Sprintf("FCM request failed: %v", err)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return SendResult{Token: token, Success: true}
	}

	respBytes, readErr := io.ReadAll(httpResp.Body)
	if readErr != nil {
		return SendResult{Token: token, ErrorMessage: fmt.Sprintf("FCM error status %d (unreadable body: %v)", httpResp.StatusCode, readErr)}
	}

	var fcmErr fcmErrorResponse
	_ = json.Unmarshal(respBytes, &fcmErr)

	// FCM reports a dead registration as 404 UNREGISTERED.
	notRegistered := fcmErr.Error.Status == "UNREGISTERED" ||
		(httpResp.StatusCode == http.StatusNotFound && fcmErr.Error.Status == "")

	msg := fcmErr.Error.Message
	if msg == "" {
		msg = fmt.Sprintf("FCM error status %d", httpResp.StatusCode)
	}

	p.logger.DebugContext(ctx, "FCM send failed",
		"status_code", httpResp.StatusCode, "fcm_status", fcmErr.Error.Status, "not_registered", notRegistered)

	return SendResult{Token: token, NotRegistered: notRegistered, ErrorMessage: msg}
}

func (p *FCMProvider) GetName() string {
	return "fcm"
}
