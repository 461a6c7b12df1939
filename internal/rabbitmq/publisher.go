package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/netric-solutions/quote-bridge/pkg/model"
)

// TopicQuotationsCreated is the legacy ERP queue that processed
// quotation confirmations are pushed to.
const TopicQuotationsCreated = "inbound.quotations.created"

// Publisher publishes quotation confirmations to RabbitMQ for the
// legacy ERP pipeline. Optional; the bridge runs without it.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

// NewPublisher connects to RabbitMQ and opens a channel.
func NewPublisher(url string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &Publisher{
		conn:    conn,
		channel: channel,
		logger:  logger,
	}, nil
}

// PublishQuotationCreated pushes one processed quotation confirmation.
func (p *Publisher) PublishQuotationCreated(ctx context.Context, rec model.QuotationRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		p.logger.Error("failed to marshal quotation record", zap.Error(err))
		return err
	}

	err = p.channel.PublishWithContext(
		ctx,
		"",                     // exchange
		TopicQuotationsCreated, // routing key
		false,                  // mandatory
		false,                  // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		p.logger.Error("failed to publish quotation confirmation",
			zap.String("company_code", rec.CompanyCode),
			zap.Error(err))
		return err
	}

	p.logger.Info("published quotation confirmation",
		zap.String("company_code", rec.CompanyCode),
		zap.String("product_code", rec.ProductCode))
	return nil
}

// Close closes the publisher.
func (p *Publisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
