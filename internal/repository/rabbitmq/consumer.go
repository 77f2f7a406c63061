package rabbitmq

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
)

type ReportGenerator interface {
	GenerateReport(ctx context.Context, reportID string) error
}

// ReportConsumer pulls report requests off the queue and runs the
// generator one job at a time (prefetch 1; the generator fans out
// internally).
type ReportConsumer struct {
	channel     *amqp.Channel
	exchange    string
	routingKey  string
	queue       string
	Generator   ReportGenerator
	prefetchCnt int
}

func NewReportConsumer(conn *amqp.Connection, exchange, routingKey, queue string, gen ReportGenerator) (*ReportConsumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	consumer := &ReportConsumer{
		channel:     ch,
		exchange:    exchange,
		routingKey:  routingKey,
		queue:       queue,
		Generator:   gen,
		prefetchCnt: 1,
	}

	_, err = ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	if err := ch.QueueBind(
		queue,
		routingKey,
		exchange,
		false,
		nil,
	); err != nil {
		return nil, err
	}

	if err := ch.Qos(consumer.prefetchCnt, 0, false); err != nil {
		return nil, err
	}

	return consumer, nil
}

func (c *ReportConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("ReportConsumer shutting down")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				log.Println("RabbitMQ channel closed")
				return nil
			}

			var req entity.ReportRequestedMessage
			if err := json.Unmarshal(msg.Body, &req); err != nil {
				log.Println("failed to unmarshal report request:", err)
				msg.Nack(false, false)
				continue
			}

			// A failed job is recorded as Failed in the report row;
			// jobs are never retried, so the message is acked either way.
			if err := c.Generator.GenerateReport(ctx, req.ReportID); err != nil {
				log.Printf("report %s finished with error: %v\n", req.ReportID, err)
			}
			msg.Ack(false)
		}
	}
}
