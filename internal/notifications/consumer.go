package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gymflow/pkg/metrics"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeout       time.Duration
	HeartbeatInterval    time.Duration
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "gymflow-waitlist",
		Topics:               []string{"schedule-capacity"},
		SessionTimeout:       30 * time.Second,
		HeartbeatInterval:    3 * time.Second,
		MaxProcessingTime:    time.Minute,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// CapacityConsumer feeds capacity released events from Kafka into a handler.
type CapacityConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	handler       CapacityReleaseHandler
	log           *zap.Logger
	metrics       *metrics.WaitlistMetrics
	wg            sync.WaitGroup
}

func NewCapacityConsumer(config *ConsumerConfig, handler CapacityReleaseHandler, log *zap.Logger, m *metrics.WaitlistMetrics) (*CapacityConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.HeartbeatInterval
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &CapacityConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		handler:       handler,
		log:           log,
		metrics:       m,
	}, nil
}

// Start consumes until ctx is cancelled.
func (cc *CapacityConsumer) Start(ctx context.Context) {
	cc.log.Info("starting capacity consumer",
		zap.Strings("topics", cc.config.Topics),
		zap.String("group", cc.config.GroupID),
	)

	cc.wg.Add(2)
	go func() {
		defer cc.wg.Done()
		cc.handleErrors()
	}()
	go func() {
		defer cc.wg.Done()
		cc.run(ctx)
	}()
}

func (cc *CapacityConsumer) run(ctx context.Context) {
	groupHandler := &ConsumerGroupHandler{consumer: cc}

	for {
		// Consume returns on every rebalance and must be called again
		if err := cc.consumerGroup.Consume(ctx, cc.config.Topics, groupHandler); err != nil {
			cc.log.Error("error consuming capacity events", zap.Error(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
		}
		if ctx.Err() != nil {
			cc.log.Info("capacity consumer shutting down")
			return
		}
	}
}

func (cc *CapacityConsumer) handleErrors() {
	for err := range cc.consumerGroup.Errors() {
		cc.log.Warn("consumer group error", zap.Error(err))
	}
}

// Stop closes the group and waits for the workers to exit. Cancel the Start context first.
func (cc *CapacityConsumer) Stop() error {
	err := cc.consumerGroup.Close()
	cc.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	cc.log.Info("capacity consumer stopped")
	return nil
}

// ConsumerGroupHandler implements sarama.ConsumerGroupHandler.
type ConsumerGroupHandler struct {
	consumer *CapacityConsumer
}

func (h *ConsumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.consumer.log.Debug("capacity consumer session started")
	return nil
}

func (h *ConsumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.consumer.log.Debug("capacity consumer session ended")
	return nil
}

func (h *ConsumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			// Failed messages are still marked; the next cancellation or a
			// manual process call picks the schedule up again.
			if err := h.processMessage(session.Context(), message); err != nil {
				h.consumer.log.Error("failed to process capacity event",
					zap.String("topic", message.Topic),
					zap.Int32("partition", message.Partition),
					zap.Int64("offset", message.Offset),
					zap.Error(err),
				)
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *ConsumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var event CapacityReleasedEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		h.consumer.metrics.CapacityEvent(metrics.DirectionConsumed, metrics.PublishResultError)
		return fmt.Errorf("failed to unmarshal capacity event: %w", err)
	}

	if err := h.executeWithRetry(ctx, &event); err != nil {
		h.consumer.metrics.CapacityEvent(metrics.DirectionConsumed, metrics.PublishResultError)
		return err
	}

	h.consumer.metrics.CapacityEvent(metrics.DirectionConsumed, metrics.PublishResultOK)
	return nil
}

func (h *ConsumerGroupHandler) executeWithRetry(ctx context.Context, event *CapacityReleasedEvent) error {
	return retryWithBackoff(ctx, h.consumer.config.MaxRetries, h.consumer.config.RetryBackoffDuration, h.consumer.log, func() error {
		return h.consumer.handler.HandleCapacityReleased(ctx, event)
	})
}

// retryWithBackoff runs fn up to maxRetries+1 times, doubling the delay after each failure.
func retryWithBackoff(ctx context.Context, maxRetries int, backoff time.Duration, log *zap.Logger, fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}

		delay := backoff * time.Duration(1<<attempt)
		log.Warn("retrying capacity event", zap.Int("attempt", attempt+1), zap.Duration("delay", delay), zap.Error(err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
