package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/divyanshkhurana06/mailed0/internal/analytics"
	"github.com/divyanshkhurana06/mailed0/internal/domain"
	"github.com/divyanshkhurana06/mailed0/internal/pkg/logger"
)

// Service implements sent-email registry business logic: validating send
// reports at the boundary and enriching listed messages with computed
// analytics. All public methods are safe for concurrent use if the
// underlying repository is concurrency-safe.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a registry service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RegisterInput is the send report as the browser extension posts it. The
// loose external payload is validated here and converted to a domain type
// before it touches anything else.
type RegisterInput struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	TrackingID string `json:"trackingId"`
	Body       string `json:"body"`
	UserEmail  string `json:"userEmail"`
}

// Register validates a send report and upserts it keyed by tracking id.
// Duplicate reports for the same tracking id are expected (the extension
// retries on an unreliable channel) and never create a second logical
// message.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.SentMessage, error) {
	in.TrackingID = strings.TrimSpace(in.TrackingID)
	in.To = strings.TrimSpace(in.To)
	in.Subject = strings.TrimSpace(in.Subject)

	if in.TrackingID == "" {
		return nil, ErrMissingTrackingID
	}
	if in.To == "" {
		return nil, ErrMissingRecipient
	}
	if in.Subject == "" {
		return nil, ErrMissingSubject
	}

	msg := &domain.SentMessage{
		TrackingID: in.TrackingID,
		UserEmail:  strings.ToLower(strings.TrimSpace(in.UserEmail)),
		Recipient:  in.To,
		Subject:    in.Subject,
		Body:       in.Body,
		SentAt:     s.now().UTC(),
	}

	if err := s.repo.UpsertSentMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("register sent message: %w", err)
	}

	logger.Info("sent message registered", "tracking_id", msg.TrackingID, "owner", msg.UserEmail)
	return msg, nil
}

// SentEmail is one registered message enriched with its computed analytics.
type SentEmail struct {
	domain.SentMessage
	Analytics domain.AnalyticsSnapshot `json:"analytics"`
}

// ListForOwner returns the owner's sent messages, newest first, each with a
// fresh AnalyticsSnapshot folded from its full open-event log. A store read
// failure propagates: partial results are never fabricated.
func (s *Service) ListForOwner(ctx context.Context, owner string) ([]SentEmail, error) {
	msgs, err := s.repo.ListSentMessages(ctx, strings.ToLower(strings.TrimSpace(owner)))
	if err != nil {
		return nil, fmt.Errorf("list sent messages: %w", err)
	}

	out := make([]SentEmail, 0, len(msgs))
	for _, msg := range msgs {
		events, err := s.repo.OpenEvents(ctx, msg.TrackingID)
		if err != nil {
			return nil, fmt.Errorf("open events for %s: %w", msg.TrackingID, err)
		}
		out = append(out, SentEmail{
			SentMessage: msg,
			Analytics:   analytics.ComputeSnapshot(events),
		})
	}
	return out, nil
}

// Analytics returns the snapshot for a single tracking id. An unknown id
// yields a zero snapshot; open events are a weak reference and may exist
// before, or without, a registered message.
func (s *Service) Analytics(ctx context.Context, trackingID string) (domain.AnalyticsSnapshot, error) {
	events, err := s.repo.OpenEvents(ctx, trackingID)
	if err != nil {
		return domain.AnalyticsSnapshot{}, fmt.Errorf("open events for %s: %w", trackingID, err)
	}
	return analytics.ComputeSnapshot(events), nil
}
