package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nrichard27/account-api/internal/domain"
	"github.com/nrichard27/account-api/internal/kafka"
)

// Kafka topic constants for account domain events.
const (
	TopicUserRegistered = "account.user.registered"
	TopicUserUpdated    = "account.user.updated"
	TopicUserDeleted    = "account.user.deleted"
)

// Aggregate type constant.
const AggregateTypeUser = "user"

// Source identifier for events originating from this service.
const SourceAccountAPI = "account-api"

// UserEventData is the payload for user.registered and user.updated events.
type UserEventData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     int    `json:"role"`
}

// UserDeletedData is the payload for a user.deleted event.
type UserDeletedData struct {
	ID string `json:"id"`
}

// Producer publishes account domain events to Kafka.
type Producer struct {
	kafka  *kafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the account API.
func NewProducer(k *kafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  k,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return p.publishUser(ctx, TopicUserRegistered, user)
}

// PublishUserUpdated publishes a user.updated event.
func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	return p.publishUser(ctx, TopicUserUpdated, user)
}

// PublishUserDeleted publishes a user.deleted event.
func (p *Producer) PublishUserDeleted(ctx context.Context, userID string) error {
	event, err := kafka.NewEvent(TopicUserDeleted, userID, AggregateTypeUser, SourceAccountAPI, UserDeletedData{ID: userID})
	if err != nil {
		return fmt.Errorf("create user.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserDeleted, event); err != nil {
		return fmt.Errorf("publish user.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.deleted event",
		slog.String("user_id", userID),
	)

	return nil
}

func (p *Producer) publishUser(ctx context.Context, topic string, user *domain.User) error {
	data := UserEventData{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     int(user.Role),
	}

	event, err := kafka.NewEvent(topic, user.ID, AggregateTypeUser, SourceAccountAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published user event",
		slog.String("topic", topic),
		slog.String("user_id", user.ID),
	)

	return nil
}
