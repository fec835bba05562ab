package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/G-studio-design/aplikasi-notify/metrics"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(topic string, brokers []string, groupID string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MaxBytes: 10e6, // 10MB
		}),
	}
}

func (c *Consumer) ReadFromKafka(ctx context.Context) (*kafka.Message, error) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		metrics.KafkaSubscriberFailureTotal.WithLabelValues(c.reader.Config().Topic).Inc()
		return nil, err
	}
	metrics.KafkaConsumerLag.WithLabelValues(
		c.reader.Config().GroupID,
		c.reader.Config().Topic,
	).Set(float64(c.reader.Stats().Lag))
	return &m, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
