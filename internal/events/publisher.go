// Package events signals completed matching runs to the workflow engine and
// to an SNS topic.
package events

import (
	"context"
	"errors"
	"time"

	apperrors "expert-matching/internal/common/errors"
	"expert-matching/internal/common/logger"
	"expert-matching/internal/common/metrics"
	"expert-matching/internal/models"
)

const (
	ChannelZeebe = "zeebe"
	ChannelSNS   = "sns"
)

// MessagePublisher publishes a correlated workflow message.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, name, correlationKey string, ttl time.Duration, variables interface{}) error
}

// TopicPublisher publishes a JSON document to a topic.
type TopicPublisher interface {
	PublishJSON(ctx context.Context, topicARN, subject string, payload interface{}, attributes map[string]string) (string, error)
}

type Config struct {
	MessageName string
	MessageTTL  time.Duration
	TopicARN    string
}

// Publisher fans a MatchingCompletedEvent out to every configured channel.
// Either channel may be nil.
type Publisher struct {
	config   Config
	messages MessagePublisher
	topic    TopicPublisher
	logger   logger.Logger
}

func NewPublisher(cfg Config, messages MessagePublisher, topic TopicPublisher, log logger.Logger) *Publisher {
	return &Publisher{
		config:   cfg,
		messages: messages,
		topic:    topic,
		logger:   log.WithFields(map[string]interface{}{"component": "event-publisher"}),
	}
}

// PublishMatchingCompleted attempts every channel and returns an
// EVENT_PUBLISH_FAILED error naming the first one that failed.
func (p *Publisher) PublishMatchingCompleted(ctx context.Context, result *models.MatchResult) error {
	event := result.CompletedEvent()

	var (
		errs          []error
		failedChannel string
	)
	record := func(channel string, err error) {
		if err == nil {
			metrics.EventsPublished.WithLabelValues(channel, "ok").Inc()
			return
		}
		metrics.EventsPublished.WithLabelValues(channel, "error").Inc()
		p.logger.Warn("matching completed event not delivered", map[string]interface{}{
			"channel":       channel,
			"opportunityId": event.OpportunityID,
			"matchResultId": event.MatchResultID,
			"error":         err.Error(),
		})
		if failedChannel == "" {
			failedChannel = channel
		}
		errs = append(errs, err)
	}

	if p.messages != nil {
		record(ChannelZeebe, p.messages.PublishMessage(ctx, p.config.MessageName, event.OpportunityID, p.config.MessageTTL, event))
	}

	if p.topic != nil && p.config.TopicARN != "" {
		_, err := p.topic.PublishJSON(ctx, p.config.TopicARN, "matching "+string(event.Status), event, map[string]string{
			"status":        string(event.Status),
			"opportunityId": event.OpportunityID,
		})
		record(ChannelSNS, err)
	}

	if len(errs) > 0 {
		return apperrors.NewEventPublishFailedError(failedChannel, errors.Join(errs...))
	}

	p.logger.Debug("matching completed event published", map[string]interface{}{
		"opportunityId": event.OpportunityID,
		"matchResultId": event.MatchResultID,
		"status":        string(event.Status),
	})
	return nil
}
