package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Topic carries every audit event; consumers filter by the category header.
const Topic = "flowguard.audit"

// KafkaSink publishes audit events to Kafka for downstream compliance and
// SIEM consumers. Postgres remains the durability anchor; this sink is
// best-effort fan-out.
type KafkaSink struct {
	client *kgo.Client
}

// NewKafkaSink connects a producer to the given brokers and makes sure the
// audit topic exists.
func NewKafkaSink(ctx context.Context, brokers []string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client); err != nil {
		client.Close()
		return nil, err
	}

	return &KafkaSink{client: client}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client) error {
	adm := kadm.NewClient(client)

	topics, err := adm.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("list kafka topics: %w", err)
	}
	if topics.Has(Topic) {
		return nil
	}

	// -1 lets the broker apply its default partition/replica settings.
	if _, err := adm.CreateTopic(ctx, -1, -1, nil, Topic); err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	return nil
}

// kafkaPayload mirrors Event with stable JSON field names for consumers.
type kafkaPayload struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	ClientID  string `json:"client_id,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Action    string `json:"action"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
}

// Publish produces one event. Events for the same client share a partition
// key so per-client ordering survives the trip through Kafka.
func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	payload := kafkaPayload{
		ID:        uuid.NewString(),
		Category:  string(event.Category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Action:    event.Action,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		ActorID:   event.ActorID,
	}
	key := payload.ID
	if !event.ClientID.IsNil() {
		payload.ClientID = event.ClientID.String()
		key = payload.ClientID
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: Topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(event.Category)},
		},
	}

	result := s.client.ProduceSync(ctx, record)
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes pending records and releases the producer.
func (s *KafkaSink) Close() {
	s.client.Close()
}
