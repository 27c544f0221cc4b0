package notifications

import (
	"context"
	"fmt"
	"time"

	"gymflow/pkg/metrics"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// NotificationProducer publishes waitlist traffic to the broker
type NotificationProducer interface {
	PublishWaitlistNotification(ctx context.Context, notification *WaitlistNotification) error
	PublishCapacityReleased(ctx context.Context, event *CapacityReleasedEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka producer
type KafkaProducerConfig struct {
	Brokers           []string
	NotificationTopic string
	CapacityTopic     string
	RetryMax          int
	Timeout           time.Duration
	RequiredAcks      sarama.RequiredAcks
	CompressionType   sarama.CompressionCodec
	IdempotentWrites  bool
	MaxMessageBytes   int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:           []string{"localhost:9092"},
		NotificationTopic: "waitlist-notifications",
		CapacityTopic:     "schedule-capacity",
		RetryMax:          3,
		Timeout:           10 * time.Second,
		RequiredAcks:      sarama.WaitForAll,
		CompressionType:   sarama.CompressionSnappy,
		IdempotentWrites:  true,
		MaxMessageBytes:   1000000,
	}
}

// KafkaProducer handles publishing notifications and capacity events to Kafka
type KafkaProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *zap.Logger
	metrics  *metrics.WaitlistMetrics
}

// NewKafkaProducer dials the brokers and returns a ready producer
func NewKafkaProducer(config *KafkaProducerConfig, log *zap.Logger, m *metrics.WaitlistMetrics) (*KafkaProducer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	// Idempotent producers require a single in-flight request per connection
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info("Kafka producer created", zap.Strings("brokers", config.Brokers))
	return NewKafkaProducerWithClient(producer, config, log, m), nil
}

// NewKafkaProducerWithClient wraps an existing sarama producer
func NewKafkaProducerWithClient(producer sarama.SyncProducer, config *KafkaProducerConfig, log *zap.Logger, m *metrics.WaitlistMetrics) *KafkaProducer {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaProducer{
		producer: producer,
		config:   config,
		log:      log,
		metrics:  m,
	}
}

// PublishWaitlistNotification publishes one notification keyed by client
func (kp *KafkaProducer) PublishWaitlistNotification(ctx context.Context, notification *WaitlistNotification) error {
	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.NotificationTopic,
		Key:       sarama.StringEncoder(notification.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   kp.notificationHeaders(notification),
		Timestamp: notification.CreatedAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		kp.metrics.NotificationPublished(string(notification.Type), metrics.PublishResultError)
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}
	kp.metrics.NotificationPublished(string(notification.Type), metrics.PublishResultOK)

	kp.log.Debug("notification published",
		zap.String("topic", kp.config.NotificationTopic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.String("type", string(notification.Type)),
		zap.String("waitlist_entry_id", notification.WaitlistEntryID.String()),
	)
	return nil
}

// PublishCapacityReleased publishes a capacity event keyed by schedule so
// events for one class are consumed in order
func (kp *KafkaProducer) PublishCapacityReleased(ctx context.Context, event *CapacityReleasedEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal capacity event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: kp.config.CapacityTopic,
		Key:   sarama.StringEncoder(event.GetPartitionKey()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(event.ID.String())},
			{Key: []byte("organization_id"), Value: []byte(event.OrganizationID.String())},
			{Key: []byte("producer"), Value: []byte("gymflow-bookings")},
		},
		Timestamp: event.OccurredAt,
	}

	if _, _, err := kp.producer.SendMessage(message); err != nil {
		kp.metrics.CapacityEvent(metrics.DirectionPublished, metrics.PublishResultError)
		return fmt.Errorf("failed to send capacity event to Kafka: %w", err)
	}
	kp.metrics.CapacityEvent(metrics.DirectionPublished, metrics.PublishResultOK)

	kp.log.Info("capacity released event published",
		zap.String("schedule_id", event.ScheduleID.String()),
		zap.Int("freed_spots", event.FreedSpots),
	)
	return nil
}

func (kp *KafkaProducer) notificationHeaders(notification *WaitlistNotification) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
		{Key: []byte("notification_type"), Value: []byte(notification.Type)},
		{Key: []byte("priority"), Value: []byte(notification.Priority)},
		{Key: []byte("organization_id"), Value: []byte(notification.OrganizationID.String())},
		{Key: []byte("client_id"), Value: []byte(notification.ClientID.String())},
		{Key: []byte("producer"), Value: []byte("gymflow-waitlist")},
		{Key: []byte("created_at"), Value: []byte(notification.CreatedAt.Format(time.RFC3339))},
	}

	if notification.BookingID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("booking_id"),
			Value: []byte(notification.BookingID.String()),
		})
	}

	return headers
}

// Close closes the Kafka producer
func (kp *KafkaProducer) Close() error {
	if kp.producer == nil {
		return nil
	}
	if err := kp.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	kp.log.Info("Kafka producer closed")
	return nil
}
