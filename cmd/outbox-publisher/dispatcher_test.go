package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
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

func TestDispatchBatchContinuesAfterTransientFailure(t *testing.T) {
	first := orderEvent(t, 0)
	second := orderEvent(t, 0)
	store := &fakeStore{events: []models.OutboxEvent{first, second}}
	pub := &fakePublisher{results: []publishResult{
		fakeResult{err: errors.New("unavailable")},
		fakeResult{},
	}}
	recorder := &fakeRecorder{}
	d := newTestDispatcher(t, store, pub, realRegistry(t), &fakeDLQ{}, recorder, config.OutboxConfig{MaxAttempts: 5})

	seen, err := d.dispatchBatch(context.Background())
	if err != nil {
		t.Fatalf("dispatch batch: %v", err)
	}
	if seen != 2 {
		t.Fatalf("expected 2 rows seen, got %d", seen)
	}
	if len(store.failed) != 1 || store.failed[0] != first.ID {
		t.Fatalf("expected first row marked failed, got %v", store.failed)
	}
	if len(store.published) != 1 || store.published[0] != second.ID {
		t.Fatalf("expected second row marked published, got %v", store.published)
	}
	if recorder.published != 1 || recorder.retried != 1 {
		t.Fatalf("unexpected metrics: %+v", recorder)
	}
}

func TestDispatchSetsOrderingKeyAndAttributes(t *testing.T) {
	event := orderEvent(t, 0)
	store := &fakeStore{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{results: []publishResult{fakeResult{}}}
	d := newTestDispatcher(t, store, pub, realRegistry(t), &fakeDLQ{}, nil, config.OutboxConfig{})

	if _, err := d.dispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch batch: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.OrderingKey != event.AggregateID.String() {
		t.Fatalf("ordering key = %q", msg.OrderingKey)
	}
	if msg.Attributes["event_type"] != string(enums.EventOrderCreated) {
		t.Fatalf("event_type attribute = %q", msg.Attributes["event_type"])
	}
	if msg.Attributes["event_id"] != "evt-1" {
		t.Fatalf("event_id attribute = %q", msg.Attributes["event_id"])
	}
	if pub.topic != "th-order-events" {
		t.Fatalf("published to %q", pub.topic)
	}
}

func TestDispatchDeadLettersUnknownEventType(t *testing.T) {
	event := orderEvent(t, 0)
	event.EventType = "order_teleported"
	store := &fakeStore{events: []models.OutboxEvent{event}}
	dlq := &fakeDLQ{}
	recorder := &fakeRecorder{}
	d := newTestDispatcher(t, store, &fakePublisher{}, realRegistry(t), dlq, recorder, config.OutboxConfig{})

	if _, err := d.dispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch batch: %v", err)
	}
	if len(dlq.entries) != 1 {
		t.Fatalf("expected dlq entry, got %d", len(dlq.entries))
	}
	if dlq.entries[0].ErrorReason != enums.OutboxDLQReasonNonRetryable {
		t.Fatalf("unexpected reason %s", dlq.entries[0].ErrorReason)
	}
	if len(store.terminal) != 1 {
		t.Fatalf("expected row marked terminal")
	}
	if recorder.deadLettered != 1 {
		t.Fatalf("expected dead letter metric")
	}
}

func TestDispatchDeadLettersAtMaxAttempts(t *testing.T) {
	event := orderEvent(t, 1)
	store := &fakeStore{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{results: []publishResult{fakeResult{err: errors.New("deadline exceeded")}}}
	dlq := &fakeDLQ{}
	d := newTestDispatcher(t, store, pub, realRegistry(t), dlq, nil, config.OutboxConfig{MaxAttempts: 2})

	if _, err := d.dispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch batch: %v", err)
	}
	if len(dlq.entries) != 1 {
		t.Fatalf("expected dlq entry, got %d", len(dlq.entries))
	}
	entry := dlq.entries[0]
	if entry.ErrorReason != enums.OutboxDLQReasonMaxAttempts {
		t.Fatalf("unexpected reason %s", entry.ErrorReason)
	}
	if entry.EventID != event.ID {
		t.Fatalf("dlq event id mismatch")
	}
	if len(store.failed) != 0 {
		t.Fatalf("terminal row should not be marked for retry")
	}
}

func TestDispatchMissingPublisherIsTerminal(t *testing.T) {
	store := &fakeStore{events: []models.OutboxEvent{orderEvent(t, 0)}}
	dlq := &fakeDLQ{}
	d := newTestDispatcher(t, store, nil, realRegistry(t), dlq, nil, config.OutboxConfig{})

	if _, err := d.dispatchBatch(context.Background()); err != nil {
		t.Fatalf("dispatch batch: %v", err)
	}
	if len(dlq.entries) != 1 {
		t.Fatalf("expected dlq entry, got %d", len(dlq.entries))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	d := newTestDispatcher(t, store, &fakePublisher{}, realRegistry(t), &fakeDLQ{}, nil, config.OutboxConfig{PollIntervalMS: 10})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := d.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewDispatcherRequiresDependencies(t *testing.T) {
	if _, err := NewDispatcher(DispatcherParams{}); err == nil {
		t.Fatalf("expected error for missing dependencies")
	}
}

func newTestDispatcher(t *testing.T, store eventStore, pub *fakePublisher, resolver eventResolver, dlq deadLetterStore, recorder dispatchRecorder, cfg config.OutboxConfig) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(DispatcherParams{
		Outbox:      cfg,
		Logger:      logger.New(logger.Options{ServiceName: "outbox-publisher-test", Output: io.Discard}),
		DB:          fakeDB{},
		Broker:      fakeDB{},
		Events:      store,
		DeadLetters: dlq,
		Resolver:    resolver,
		Topics: func(topic string) topicPublisher {
			if pub == nil {
				return nil
			}
			pub.topic = topic
			return pub
		},
		Metrics: recorder,
	})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return d
}

func realRegistry(t *testing.T) *registry.EventRegistry {
	t.Helper()
	reg, err := registry.NewEventRegistry(config.PubSubConfig{
		OrdersTopic:   "th-order-events",
		PaymentsTopic: "th-payment-events",
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func orderEvent(t *testing.T, attempts int) models.OutboxEvent {
	t.Helper()
	orderID := uuid.New()
	data, err := json.Marshal(map[string]any{
		"orderId":     orderID,
		"orderNumber": "TH-20260101-JO-0001",
		"direction":   "JO_TO_DZ",
	})
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    "evt-1",
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload:       payload,
		AttemptCount:  attempts,
	}
}

type fakeDB struct{}

func (fakeDB) Ping(context.Context) error { return nil }

func (fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error { return fn(nil) }

type fakeStore struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (f *fakeStore) FetchUnpublishedForPublish(*gorm.DB, int, int) ([]models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeStore) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeStore) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeStore) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, _ int) error {
	f.terminal = append(f.terminal, id)
	return nil
}

type fakeDLQ struct {
	entries []models.OutboxDLQ
}

func (f *fakeDLQ) InsertTx(_ *gorm.DB, entry models.OutboxDLQ) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakePublisher struct {
	topic    string
	results  []publishResult
	messages []*gcppubsub.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	if len(f.results) == 0 {
		return nil
	}
	result := f.results[0]
	f.results = f.results[1:]
	return result
}

type fakeResult struct {
	err error
}

func (f fakeResult) Get(context.Context) (string, error) {
	return "msg-id", f.err
}

type fakeRecorder struct {
	published    int
	retried      int
	deadLettered int
}

func (f *fakeRecorder) IncPublished(string)            { f.published++ }
func (f *fakeRecorder) IncRetry(string)                { f.retried++ }
func (f *fakeRecorder) IncDeadLettered(string, string) { f.deadLettered++ }
