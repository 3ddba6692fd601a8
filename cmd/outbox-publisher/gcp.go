package main

import (
	"context"
	"errors"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

type topicPublisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type topicHandles interface {
	Publisher(name string) *gcppubsub.Publisher
}

// gcpTopics caches one publisher per topic. Ordering is enabled so events of
// the same order reach subscribers in commit order.
type gcpTopics struct {
	client  topicHandles
	handles map[string]*gcppubsub.Publisher
}

func newGCPTopics(client topicHandles) *gcpTopics {
	return &gcpTopics{client: client, handles: map[string]*gcppubsub.Publisher{}}
}

func (g *gcpTopics) For(topic string) topicPublisher {
	if handle, ok := g.handles[topic]; ok {
		return gcpPublisher{handle: handle}
	}
	handle := g.client.Publisher(topic)
	if handle == nil {
		return nil
	}
	handle.EnableMessageOrdering = true
	g.handles[topic] = handle
	return gcpPublisher{handle: handle}
}

// Stop flushes every cached publisher.
func (g *gcpTopics) Stop() {
	for _, handle := range g.handles {
		handle.Stop()
	}
}

type gcpPublisher struct {
	handle *gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p.handle == nil {
		return nil
	}
	return gcpResult{handle: p.handle, key: msg.OrderingKey, result: p.handle.Publish(ctx, msg)}
}

type gcpResult struct {
	handle *gcppubsub.Publisher
	key    string
	result *gcppubsub.PublishResult
}

// Get waits for the server ack. A failed ordered publish pauses its key until
// resumed, so the key is resumed for the next retry.
func (r gcpResult) Get(ctx context.Context) (string, error) {
	if r.result == nil {
		return "", errors.New("publish result is nil")
	}
	id, err := r.result.Get(ctx)
	if err != nil && r.key != "" {
		r.handle.ResumePublish(r.key)
	}
	return id, err
}
