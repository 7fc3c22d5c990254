package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/sovannra/microfin/internal/domain"
)

// Publisher writes payment events to the ledger topic. Messages are keyed by
// loan ID so events for one loan stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) PublishPaymentRecorded(ctx context.Context, event *domain.PaymentRecordedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.LoanID, 10)),
		Value: data,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
