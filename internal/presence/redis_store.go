package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumendocs/collab-service/internal/domain"
	"github.com/lumendocs/collab-service/pkg/log"
)

// Config holds Redis presence store configuration.
type Config struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
	// OpTimeout bounds every store call so a slow Redis cannot stall a
	// join indefinitely.
	OpTimeout time.Duration
	// PerConnection makes each connection a distinct set entry. Off by
	// default: a second tab from the same identity collapses into one.
	PerConnection bool
}

// entry is the stored set member. Field order is fixed so the marshalled
// bytes used by SADD and SREM always match.
type entry struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	ConnectionID string `json:"connection_id,omitempty"`
}

type redisStore struct {
	client        *redis.Client
	keyPrefix     string
	opTimeout     time.Duration
	perConnection bool
}

// NewRedisStore creates a Redis-backed presence store.
func NewRedisStore(cfg Config) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "document"
	}
	timeout := cfg.OpTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &redisStore{
		client:        client,
		keyPrefix:     prefix,
		opTimeout:     timeout,
		perConnection: cfg.PerConnection,
	}, nil
}

// Key pattern: document:{document_id}:users  SET<identity JSON>
func (s *redisStore) usersKey(docID string) string {
	return fmt.Sprintf("%s:%s:users", s.keyPrefix, docID)
}

func (s *redisStore) memberValue(m Member) (string, error) {
	e := entry{UserID: m.Identity.UserID, Username: m.Identity.Username}
	if s.perConnection {
		e.ConnectionID = m.ConnectionID
	}
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *redisStore) Add(ctx context.Context, docID string, m Member) error {
	val, err := s.memberValue(m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.SAdd(ctx, s.usersKey(docID), val).Err(); err != nil {
		return fmt.Errorf("presence add: %w", err)
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, docID string, m Member) error {
	val, err := s.memberValue(m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if err := s.client.SRem(ctx, s.usersKey(docID), val).Err(); err != nil {
		return fmt.Errorf("presence remove: %w", err)
	}
	return nil
}

func (s *redisStore) Members(ctx context.Context, docID string) ([]domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	values, err := s.client.SMembers(ctx, s.usersKey(docID)).Result()
	if err != nil {
		return nil, fmt.Errorf("presence members: %w", err)
	}

	seen := make(map[string]struct{}, len(values))
	identities := make([]domain.Identity, 0, len(values))
	for _, v := range values {
		var e entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			log.L().Warn().Str(log.FieldDocumentID, docID).Msg("presence: skipping malformed set member")
			continue
		}
		if _, dup := seen[e.UserID]; dup {
			continue
		}
		seen[e.UserID] = struct{}{}
		identities = append(identities, domain.Identity{UserID: e.UserID, Username: e.Username})
	}

	// Set order is arbitrary; sort for stable broadcasts.
	sort.Slice(identities, func(i, j int) bool { return identities[i].UserID < identities[j].UserID })

	return identities, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
