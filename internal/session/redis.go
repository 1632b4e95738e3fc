package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nocodecorp/portal-api/internal/models"
	"github.com/redis/go-redis/v9"
)

// Redis-backed store, for deployments with more than one portal instance.
// Each entry carries a hard TTL backstop of twice the idle window so
// abandoned sessions disappear even if the sweep never sees them.

const redisKeyPrefix = "session:"

type redisStore struct {
	client  *redis.Client
	idleTTL time.Duration
	now     func() time.Time
}

func NewRedisStore(redisURL string, idleTTL time.Duration) (Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if idleTTL == 0 {
		idleTTL = DefaultIdleTTL
	}

	log.Println("[Session] ✅ Redis session store connected")
	return &redisStore{client: client, idleTTL: idleTTL, now: time.Now}, nil
}

func (r *redisStore) Create(ctx context.Context, email, clientID string) (*models.Session, error) {
	s := &models.Session{
		Token:      uuid.New().String(),
		Email:      email,
		ClientID:   clientID,
		LastActive: r.now(),
	}
	if err := r.write(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *redisStore) Get(ctx context.Context, token string) (*models.Session, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		// Corrupt entries are treated as absent and removed.
		log.Printf("[Session] ⚠️ Discarding malformed session record: %v", err)
		r.client.Del(ctx, redisKeyPrefix+token)
		return nil, nil
	}
	s.Token = token

	if Expired(&s, r.idleTTL, r.now()) {
		r.client.Del(ctx, redisKeyPrefix+token)
		return nil, nil
	}
	return &s, nil
}

func (r *redisStore) Touch(ctx context.Context, token string) error {
	s, err := r.Get(ctx, token)
	if err != nil || s == nil {
		return err
	}
	s.LastActive = r.now()
	return r.write(ctx, s)
}

func (r *redisStore) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, redisKeyPrefix+token).Err()
}

func (r *redisStore) SweepExpired(ctx context.Context) ([]models.Session, error) {
	var expired []models.Session

	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}

		var s models.Session
		if err := json.Unmarshal(data, &s); err != nil {
			r.client.Del(ctx, key)
			continue
		}
		s.Token = key[len(redisKeyPrefix):]

		if Expired(&s, r.idleTTL, r.now()) {
			expired = append(expired, s)
			r.client.Del(ctx, key)
		}
	}
	if err := iter.Err(); err != nil {
		return expired, err
	}
	return expired, nil
}

func (r *redisStore) write(ctx context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKeyPrefix+s.Token, data, 2*r.idleTTL).Err()
}
