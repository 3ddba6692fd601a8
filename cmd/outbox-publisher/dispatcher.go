package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thouesa/thouesa-backend/pkg/config"
	"github.com/thouesa/thouesa-backend/pkg/db/models"
	"github.com/thouesa/thouesa-backend/pkg/enums"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/outbox"
	"github.com/thouesa/thouesa-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultMaxAttempts    = 10
	defaultPublishTimeout = 15 * time.Second
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

type txRunner interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pinger interface {
	Ping(context.Context) error
}

type eventStore interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type deadLetterStore interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type eventResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type dispatchRecorder interface {
	IncPublished(eventType string)
	IncRetry(eventType string)
	IncDeadLettered(eventType, reason string)
}

type DispatcherParams struct {
	Outbox      config.OutboxConfig
	Logger      *logger.Logger
	DB          txRunner
	Broker      pinger
	Events      eventStore
	DeadLetters deadLetterStore
	Resolver    eventResolver
	Topics      func(topic string) topicPublisher
	Metrics     dispatchRecorder
}

// Dispatcher drains committed outbox rows to Pub/Sub. Rows are locked with
// SKIP LOCKED so several replicas can run side by side.
type Dispatcher struct {
	logg         *logger.Logger
	db           txRunner
	broker       pinger
	events       eventStore
	deadLetters  deadLetterStore
	resolver     eventResolver
	topics       func(topic string) topicPublisher
	metrics      dispatchRecorder
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
	jitter       *rand.Rand
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.Broker == nil:
		return nil, errors.New("pubsub client is required")
	case params.Events == nil:
		return nil, errors.New("outbox repository is required")
	case params.DeadLetters == nil:
		return nil, errors.New("dlq repository is required")
	case params.Resolver == nil:
		return nil, errors.New("event registry is required")
	case params.Topics == nil:
		return nil, errors.New("topic publishers are required")
	}

	batch := params.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	maxAttempts := params.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	interval := time.Duration(params.Outbox.PollIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = defaultPollInterval
	}
	var recorder dispatchRecorder = noopRecorder{}
	if params.Metrics != nil {
		recorder = params.Metrics
	}

	return &Dispatcher{
		logg:         params.Logger,
		db:           params.DB,
		broker:       params.Broker,
		events:       params.Events,
		deadLetters:  params.DeadLetters,
		resolver:     params.Resolver,
		topics:       params.Topics,
		metrics:      recorder,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: interval,
		jitter:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run polls until ctx is cancelled. Empty polls sleep for the poll interval;
// failed batches back off exponentially up to maxBackoff.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := d.broker.Ping(ctx); err != nil {
		return fmt.Errorf("pubsub ping failed: %w", err)
	}

	backoff := d.pollInterval
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		processed, err := d.dispatchBatch(ctx)
		if err != nil {
			d.logg.Error(ctx, "outbox batch failed", err)
			backoff = min(backoff*2, maxBackoff)
			if err := d.sleep(ctx, backoff); err != nil {
				return err
			}
			continue
		}
		backoff = d.pollInterval
		if processed > 0 {
			continue
		}
		if err := d.sleep(ctx, d.pollInterval); err != nil {
			return err
		}
	}
}

// dispatchBatch publishes one locked batch and reports how many rows it saw.
func (d *Dispatcher) dispatchBatch(ctx context.Context) (int, error) {
	seen := 0
	err := d.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := d.events.FetchUnpublishedForPublish(tx, d.batchSize, d.maxAttempts)
		if err != nil {
			return err
		}
		seen = len(rows)
		for _, row := range rows {
			if err := d.dispatchOne(ctx, tx, row); err != nil {
				return err
			}
		}
		return nil
	})
	return seen, err
}

func (d *Dispatcher) dispatchOne(ctx context.Context, tx *gorm.DB, row models.OutboxEvent) error {
	eventType := string(row.EventType)
	resolved, err := d.resolver.Resolve(row)
	if err != nil {
		return d.deadLetter(ctx, tx, row, "", enums.OutboxDLQReasonNonRetryable, err)
	}
	topic := resolved.Descriptor.Topic
	rowCtx := d.logg.WithFields(ctx, rowFields(row, resolved.Envelope, topic))

	pubErr := d.publish(ctx, row, resolved)
	if pubErr == nil {
		if err := d.events.MarkPublishedTx(tx, row.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", row.ID, err)
		}
		d.metrics.IncPublished(eventType)
		d.logg.Debug(rowCtx, "outbox event published")
		return nil
	}

	var nonRetryable registry.NonRetryableError
	if errors.As(pubErr, &nonRetryable) {
		return d.deadLetter(ctx, tx, row, topic, enums.OutboxDLQReasonNonRetryable, pubErr)
	}
	if row.AttemptCount+1 >= d.maxAttempts {
		return d.deadLetter(ctx, tx, row, topic, enums.OutboxDLQReasonMaxAttempts, fmt.Errorf("max publish attempts reached: %w", pubErr))
	}

	d.logg.Warn(d.logg.WithFields(rowCtx, map[string]any{
		"attempt_count": row.AttemptCount + 1,
		"error":         pubErr.Error(),
	}), "outbox publish failed, will retry")
	if err := d.events.MarkFailedTx(tx, row.ID, pubErr); err != nil {
		return fmt.Errorf("mark failed %s: %w", row.ID, err)
	}
	d.metrics.IncRetry(eventType)
	return nil
}

func (d *Dispatcher) publish(ctx context.Context, row models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := d.topics(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %s", topic))
	}

	msg := &gcppubsub.Message{
		Data:        row.Payload,
		OrderingKey: row.AggregateID.String(),
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID.String(),
			"occurred_at":    resolved.Envelope.OccurredAt.UTC().Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := pub.Publish(publishCtx, msg)
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned no result for topic %s", topic))
	}
	_, err := result.Get(publishCtx)
	return err
}

func (d *Dispatcher) deadLetter(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, topic string, reason enums.OutboxDLQErrorReason, cause error) error {
	fields := rowFields(row, outbox.PayloadEnvelope{}, topic)
	fields["error_reason"] = reason
	fields["error"] = cause.Error()
	d.logg.Warn(d.logg.WithFields(ctx, fields), "outbox event moved to dead letters")

	if err := d.deadLetters.InsertTx(tx, row.DeadLetter(reason, cause, time.Now())); err != nil {
		return fmt.Errorf("insert dlq %s: %w", row.ID, err)
	}
	if err := d.events.MarkTerminalTx(tx, row.ID, cause, d.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", row.ID, err)
	}
	d.metrics.IncDeadLettered(string(row.EventType), string(reason))
	return nil
}

func rowFields(row models.OutboxEvent, envelope outbox.PayloadEnvelope, topic string) map[string]any {
	fields := map[string]any{
		"outbox_id":      row.ID.String(),
		"event_type":     row.EventType,
		"aggregate_type": row.AggregateType,
		"aggregate_id":   row.AggregateID.String(),
		"attempt_count":  row.AttemptCount,
	}
	if envelope.EventID != "" {
		fields["event_id"] = envelope.EventID
	}
	if topic != "" {
		fields["topic"] = topic
	}
	return fields
}

func (d *Dispatcher) sleep(ctx context.Context, base time.Duration) error {
	wait := base + time.Duration(d.jitter.Int63n(int64(jitterWindow)))
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type noopRecorder struct{}

func (noopRecorder) IncPublished(string)            {}
func (noopRecorder) IncRetry(string)                {}
func (noopRecorder) IncDeadLettered(string, string) {}
