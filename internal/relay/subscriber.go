package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumendocs/collab-service/pkg/log"
)

// Subscriber receives envelopes on one relay channel and pushes them to a
// handler. Delivery is push-only: nothing waits on a relayed message.
// Reconnects with a fixed backoff on receive errors.
type Subscriber struct {
	client         *redis.Client
	channel        string
	selfInstanceID string
	handler        func(*Envelope)
	doneCh         chan struct{}
}

func newSubscriber(client *redis.Client, channel, selfInstanceID string, handler func(*Envelope)) *Subscriber {
	return &Subscriber{
		client:         client,
		channel:        channel,
		selfInstanceID: selfInstanceID,
		handler:        handler,
		doneCh:         make(chan struct{}),
	}
}

// Done returns a channel that is closed when Run() exits.
func (s *Subscriber) Done() <-chan struct{} { return s.doneCh }

// Run subscribes and dispatches until ctx is done.
func (s *Subscriber) Run(ctx context.Context) {
	defer close(s.doneCh)
	l := log.L()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := s.runSubscription(ctx); err != nil && ctx.Err() == nil {
				l.Warn().Err(err).Str(log.FieldChannel, s.channel).Msg("relay subscription error, reconnecting in 2s")
				select {
				case <-ctx.Done():
					return
				case <-time.After(2 * time.Second):
					continue
				}
			}
			return
		}
	}
}

func (s *Subscriber) runSubscription(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	// Wait for subscription to be active
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.handleMessage(msg.Payload)
		}
	}
}

func (s *Subscriber) handleMessage(payload string) {
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		log.L().Warn().Err(err).Str(log.FieldChannel, s.channel).Msg("relay: invalid envelope")
		return
	}
	if env.DocumentID == "" {
		return
	}
	// This instance already fanned out locally before publishing.
	if env.OriginInstanceID == s.selfInstanceID {
		return
	}
	s.handler(&env)
}
