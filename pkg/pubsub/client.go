package pubsub

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"

	"github.com/thouesa/thouesa-backend/pkg/config"
	"github.com/thouesa/thouesa-backend/pkg/gcp"
	"github.com/thouesa/thouesa-backend/pkg/logger"
)

var (
	errNoTopics       = errors.New("pubsub topic name is required")
	errNotInitialized = errors.New("pubsub client not initialized")
)

// Client owns the Pub/Sub connection for the order and payment event topics.
type Client struct {
	client    *pubsub.Client
	projectID string
	topics    []string
}

// NewClient connects and verifies every configured topic exists.
func NewClient(ctx context.Context, gcpCfg config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID, err := gcp.ProjectID(gcpCfg)
	if err != nil {
		return nil, err
	}
	topics := topicNames(cfg)
	if len(topics) == 0 {
		return nil, errNoTopics
	}

	ps, err := pubsub.NewClient(ctx, projectID, gcp.ClientOptions(gcpCfg)...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{client: ps, projectID: projectID, topics: topics}
	if err := c.Ping(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topics", topics), "pubsub.client_ready")
	}
	return c, nil
}

// topicNames returns the distinct non-blank topics in config order.
func topicNames(cfg config.PubSubConfig) []string {
	var names []string
	for _, raw := range []string{cfg.OrdersTopic, cfg.PaymentsTopic} {
		name := strings.TrimSpace(raw)
		if name != "" && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// Publisher returns a handle for a topic ID or a fully qualified topic name.
func (c *Client) Publisher(topic string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	name := gcp.ResourceName(c.projectID, "topics", topic)
	if name == "" {
		return nil
	}
	return c.client.Publisher(name)
}

// Ping checks that every configured topic exists.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	for _, topic := range c.topics {
		name := gcp.ResourceName(c.projectID, "topics", topic)
		_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: name})
		switch {
		case gcp.IsNotFound(err):
			return fmt.Errorf("topic %q does not exist", topic)
		case err != nil:
			return fmt.Errorf("checking topic %q: %w", topic, err)
		}
	}
	return nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
