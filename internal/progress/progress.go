package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/guirluz/rental-backend/internal/app/models"
	"github.com/redis/go-redis/v9"
)

// Channel is the single well-known topic carrying import lifecycle events.
const Channel = "progress_channel"

type Publisher struct {
	client *redis.Client
}

func CreatePublisher(client *redis.Client) *Publisher {
	return &Publisher{
		client: client,
	}
}

// Publish is fire-and-forget: no acknowledgment, no delivery guarantee. The
// task status store stays the durable source of truth.
func (p *Publisher) Publish(ctx context.Context, event models.ProgressEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal progress event: %w", err)
	}

	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish progress event: %w", err)
	}

	return nil
}

// Source adapts a Redis subscription for the notification relay. Subscribe
// may be called again after Close to establish a fresh subscription.
type Source struct {
	client *redis.Client
	pubsub *redis.PubSub
}

func CreateSource(client *redis.Client) *Source {
	return &Source{
		client: client,
	}
}

func (s *Source) Subscribe(ctx context.Context) (<-chan string, error) {
	pubsub := s.client.Subscribe(ctx, Channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", Channel, err)
	}
	s.pubsub = pubsub

	messages := pubsub.Channel()
	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range messages {
			out <- msg.Payload
		}
	}()

	return out, nil
}

func (s *Source) Close() error {
	if s.pubsub == nil {
		return nil
	}

	pubsub := s.pubsub
	s.pubsub = nil
	return pubsub.Close()
}
