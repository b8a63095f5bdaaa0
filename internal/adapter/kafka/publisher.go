package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Message header keys.
const (
	HeaderRiskLevel   = "risk_level"
	HeaderSequence    = "sequence"
	HeaderRunID       = "run_id"
	HeaderGeneratedAt = "generated_at"
)

// UpdateMessage is the JSON value published for each accepted result.
type UpdateMessage struct {
	Location   string              `json:"location"`
	Invocation domain.Invocation   `json:"invocation"`
	Result     domain.UpdateResult `json:"result"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes accepted update results to a Kafka topic.
// It implements pipeline.Sink.
type Publisher struct {
	writer   messageWriter
	location string
	logger   *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured topic. Messages are
// keyed by location name so one location's updates stay ordered on a partition.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, location: cfg.LocationName, logger: logger}
}

func (p *Publisher) Name() string { return "kafka" }

// Deliver publishes one result.
func (p *Publisher) Deliver(ctx context.Context, inv domain.Invocation, result domain.UpdateResult) error {
	msg, err := serializeToMessage(p.location, inv, result)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish update %d: %w", inv.Sequence, err)
	}
	return nil
}

// ReportFailure logs the failure. Failed runs are not published; consumers
// keep the last result they received.
func (p *Publisher) ReportFailure(_ context.Context, inv domain.Invocation, err error) {
	p.logger.Warn("update not published", "sequence", inv.Sequence, "run_id", inv.RunID, "error", err)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an update into a Kafka message.
func serializeToMessage(location string, inv domain.Invocation, result domain.UpdateResult) (kafkago.Message, error) {
	data, err := json.Marshal(UpdateMessage{Location: location, Invocation: inv, Result: result})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize update: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(location),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderRiskLevel, Value: []byte(result.Risk.Level)},
			{Key: HeaderSequence, Value: []byte(strconv.FormatUint(inv.Sequence, 10))},
			{Key: HeaderRunID, Value: []byte(inv.RunID)},
			{Key: HeaderGeneratedAt, Value: []byte(result.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
