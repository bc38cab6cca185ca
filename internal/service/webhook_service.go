package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"credentialing-crm/internal/core/domain"
	"credentialing-crm/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventEnrollmentStatusChanged identifies the single event type this
// service emits.
const EventEnrollmentStatusChanged = "ENROLLMENT_STATUS_CHANGED"

// webhookRetryIntervals defines the backoff between delivery attempts.
var webhookRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	5 * time.Minute,
}

// WebhookPayload is the JSON structure sent to the payer-integration
// endpoint.
type WebhookPayload struct {
	EventType string             `json:"event_type"`
	Data      WebhookPayloadData `json:"data"`
	Signature string             `json:"signature"`
}

// WebhookPayloadData holds the status change details in the webhook.
// Terminal tells the receiver the enrollment reached a resting state
// that only a restart can leave.
type WebhookPayloadData struct {
	EnrollmentID string `json:"enrollment_id"`
	ProviderID   string `json:"provider_id"`
	PayerName    string `json:"payer_name"`
	FromStatus   string `json:"from_status"`
	ToStatus     string `json:"to_status"`
	Terminal     bool   `json:"terminal"`
	Timestamp    int64  `json:"timestamp"`
}

// WebhookConfig holds the delivery target and signing settings.
type WebhookConfig struct {
	URL        string
	Secret     string
	Timeout    time.Duration
	MaxRetries int
}

// webhookService implements ports.WebhookNotifier.
type webhookService struct {
	cfg         WebhookConfig
	sigSvc      ports.SignatureService
	webhookRepo ports.WebhookRepository
	httpClient  HTTPClient
	log         zerolog.Logger
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewWebhookService creates a new status-change webhook notifier.
// webhookRepo may be nil; delivery records are then skipped.
func NewWebhookService(
	cfg WebhookConfig,
	sigSvc ports.SignatureService,
	webhookRepo ports.WebhookRepository,
	httpClient HTTPClient,
	log zerolog.Logger,
) ports.WebhookNotifier {
	return &webhookService{
		cfg:         cfg,
		sigSvc:      sigSvc,
		webhookRepo: webhookRepo,
		httpClient:  httpClient,
		log:         log,
	}
}

// NotifyStatusChange sends a signed status-change notification
// asynchronously with retries.
func (s *webhookService) NotifyStatusChange(ctx context.Context, enrollment *domain.Enrollment, from domain.EnrollmentStatus) error {
	if s.cfg.URL == "" {
		s.log.Debug().Str("enrollment_id", enrollment.ID.String()).Msg("webhook: no URL configured, skipping")
		return nil
	}

	data := WebhookPayloadData{
		EnrollmentID: enrollment.ID.String(),
		ProviderID:   enrollment.ProviderID.String(),
		PayerName:    enrollment.PayerName,
		FromStatus:   string(from),
		ToStatus:     string(enrollment.Status),
		Terminal:     enrollment.IsTerminal(),
		Timestamp:    time.Now().Unix(),
	}

	dataBytes, _ := json.Marshal(data)
	signature := s.sigSvc.Sign(s.cfg.Secret, string(dataBytes))

	payload := WebhookPayload{
		EventType: EventEnrollmentStatusChanged,
		Data:      data,
		Signature: signature,
	}

	// Fire async with retries
	go s.deliverWithRetries(payload, enrollment.ID)

	return nil
}

// deliverWithRetries attempts to deliver the webhook with backoff and
// records the final outcome.
func (s *webhookService) deliverWithRetries(payload WebhookPayload, enrollmentID uuid.UUID) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("enrollment_id", enrollmentID.String()).Msg("webhook: failed to marshal payload")
		return
	}

	maxAttempts := s.cfg.MaxRetries
	if maxAttempts <= 0 || maxAttempts > len(webhookRetryIntervals) {
		maxAttempts = len(webhookRetryIntervals)
	}

	var lastErr string
	attempts := 0
	for attempt := 0; attempt <= maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(webhookRetryIntervals[attempt-1])
		}
		attempts++

		req, err := http.NewRequest(http.MethodPost, s.cfg.URL, bytes.NewReader(payloadBytes))
		if err != nil {
			lastErr = err.Error()
			s.log.Error().Err(err).Str("enrollment_id", enrollmentID.String()).Int("attempt", attempts).Msg("webhook: failed to create request")
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err.Error()
			s.log.Warn().Err(err).Str("enrollment_id", enrollmentID.String()).Int("attempt", attempts).Msg("webhook: delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			s.log.Info().Str("enrollment_id", enrollmentID.String()).Int("attempt", attempts).Int("status", resp.StatusCode).Msg("webhook: delivered successfully")
			s.recordDelivery(enrollmentID, domain.WebhookDeliveryStatusDelivered, attempts, "")
			return
		}

		lastErr = resp.Status
		s.log.Warn().Str("enrollment_id", enrollmentID.String()).Int("attempt", attempts).Int("status", resp.StatusCode).Msg("webhook: non-2xx response, retrying")
	}

	s.log.Error().Str("enrollment_id", enrollmentID.String()).Msg("webhook: all retry attempts exhausted")
	s.recordDelivery(enrollmentID, domain.WebhookDeliveryStatusFailed, attempts, lastErr)
}

func (s *webhookService) recordDelivery(enrollmentID uuid.UUID, status domain.WebhookDeliveryStatus, attempts int, lastErr string) {
	if s.webhookRepo == nil {
		return
	}
	delivery := &domain.WebhookDelivery{
		ID:           uuid.New(),
		EnrollmentID: enrollmentID,
		URL:          s.cfg.URL,
		EventType:    EventEnrollmentStatusChanged,
		Status:       status,
		Attempts:     attempts,
		LastError:    lastErr,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.webhookRepo.RecordDelivery(context.Background(), delivery); err != nil {
		s.log.Warn().Err(err).Str("enrollment_id", enrollmentID.String()).Msg("webhook: failed to record delivery")
	}
}
