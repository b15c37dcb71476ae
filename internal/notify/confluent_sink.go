package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/lumendocs/collab-service/pkg/log"
)

// ConfluentSink emits notification events to a Kafka topic.
type ConfluentSink struct {
	producer *kafka.Producer
	topic    string
	doneCh   chan struct{}
}

func NewConfluentSink(brokers, topic string) (*ConfluentSink, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "1",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	s := &ConfluentSink{
		producer: p,
		topic:    topic,
		doneCh:   make(chan struct{}),
	}

	go s.deliveryReportHandler()

	return s, nil
}

func (s *ConfluentSink) deliveryReportHandler() {
	for e := range s.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				log.L().Warn().Err(ev.TopicPartition.Error).Msg("notification delivery failed")
			}
		}
	}
	close(s.doneCh)
}

func (s *ConfluentSink) Emit(ctx context.Context, event *Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Document id as key keeps one document's events on one partition.
	err = s.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &s.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(event.DocumentID),
		Value: value,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce event: %w", err)
	}

	return nil
}

func (s *ConfluentSink) Close() error {
	s.producer.Flush(5000)
	s.producer.Close()
	<-s.doneCh
	return nil
}
