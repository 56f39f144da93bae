package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/mdx/mdx/internal/platform/privacy"
)

const redisKeyPrefix = "mdx:session:"

// RedisRepo keeps sessions in Redis under mdx:session:<id> with a rolling
// TTL, so abandoned workups expire on their own. Identity fields are
// encrypted at rest when an encryptor is configured.
type RedisRepo struct {
	client *redis.Client
	ttl    time.Duration
	enc    *privacy.FieldEncryptor
}

// NewRedisRepo returns a Redis-backed repository. A zero ttl stores
// sessions without expiry; enc may be nil.
func NewRedisRepo(client *redis.Client, ttl time.Duration, enc *privacy.FieldEncryptor) *RedisRepo {
	return &RedisRepo{client: client, ttl: ttl, enc: enc}
}

func redisKey(id uuid.UUID) string {
	return redisKeyPrefix + id.String()
}

func (r *RedisRepo) Create(ctx context.Context, sess *Session) error {
	now := time.Now().UTC()
	sess.ID = uuid.New()
	sess.CreatedAt = now
	sess.UpdatedAt = now

	raw, err := r.sessionJSON(sess)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKey(sess.ID), raw, r.ttl).Err()
}

func (r *RedisRepo) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	raw, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.decode(raw)
}

func (r *RedisRepo) Update(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()

	raw, err := r.sessionJSON(sess)
	if err != nil {
		return err
	}
	// SET XX refreshes the TTL on every write, keeping active sessions
	// alive while idle ones age out.
	ok, err := r.client.SetXX(ctx, redisKey(sess.ID), raw, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *RedisRepo) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.client.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisRepo) List(ctx context.Context, limit, offset int) ([]*Session, int, error) {
	var keys []string
	var cursor uint64
	for {
		k, next, err := r.client.Scan(ctx, cursor, redisKeyPrefix+"*", 200).Result()
		if err != nil {
			return nil, 0, err
		}
		keys = append(keys, k...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return []*Session{}, 0, nil
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, 0, err
	}

	all := make([]*Session, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			// key expired between SCAN and MGET
			continue
		}
		sess, err := r.decode([]byte(s))
		if err != nil {
			return nil, 0, err
		}
		all = append(all, sess)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return []*Session{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *RedisRepo) sessionJSON(sess *Session) ([]byte, error) {
	s := sess
	if r.enc != nil {
		cp, err := clone(sess)
		if err != nil {
			return nil, err
		}
		if err := encryptIntake(&cp.Chart.Intake, r.enc); err != nil {
			return nil, err
		}
		s = cp
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return raw, nil
}

func (r *RedisRepo) decode(raw []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if r.enc != nil && sess.Chart != nil {
		if err := decryptIntake(&sess.Chart.Intake, r.enc); err != nil {
			return nil, err
		}
	}
	return &sess, nil
}
