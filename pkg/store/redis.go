package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "nova-swap"

// RedisStore persists listings and purchases in Redis: one JSON value per
// listing, a sorted set scored by creation time for ordering, and a list
// plus membership set per buyer.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to Redis at addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func listingKey(groupID string) string {
	return fmt.Sprintf("%s:listing:%s", redisKeyPrefix, groupID)
}

func purchasesKey(buyer string) string {
	return fmt.Sprintf("%s:purchases:%s", redisKeyPrefix, buyer)
}

func purchasedSetKey(buyer string) string {
	return fmt.Sprintf("%s:purchased:%s", redisKeyPrefix, buyer)
}

const listingIndexKey = redisKeyPrefix + ":listings:index"

func (s *RedisStore) Listings(ctx context.Context, f Filter) ([]Listing, error) {
	groupIDs, err := s.rdb.ZRevRange(ctx, listingIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	if len(groupIDs) == 0 {
		return []Listing{}, nil
	}

	keys := make([]string, len(groupIDs))
	for i, id := range groupIDs {
		keys[i] = listingKey(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}

	out := make([]Listing, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry whose value key expired or was deleted.
			continue
		}
		var l Listing
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			return nil, fmt.Errorf("decode listing: %w", err)
		}
		if matches(l, f) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *RedisStore) ListingByGroupID(ctx context.Context, groupID string) (*Listing, error) {
	raw, err := s.rdb.Get(ctx, listingKey(groupID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch listing %s: %w", groupID, err)
	}

	var l Listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("decode listing %s: %w", groupID, err)
	}
	return &l, nil
}

func (s *RedisStore) LatestListing(ctx context.Context) (*Listing, error) {
	groupIDs, err := s.rdb.ZRevRange(ctx, listingIndexKey, 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("latest listing: %w", err)
	}
	if len(groupIDs) == 0 {
		return nil, ErrNotFound
	}
	return s.ListingByGroupID(ctx, groupIDs[0])
}

func (s *RedisStore) AppendListing(ctx context.Context, l Listing) error {
	exists, err := s.rdb.Exists(ctx, listingKey(l.GroupID)).Result()
	if err != nil {
		return fmt.Errorf("check listing %s: %w", l.GroupID, err)
	}
	if exists > 0 {
		return fmt.Errorf("listing '%s' already exists", l.GroupID)
	}

	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode listing %s: %w", l.GroupID, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, listingKey(l.GroupID), data, 0)
	pipe.ZAdd(ctx, listingIndexKey, redis.Z{
		Score:  float64(l.CreatedAt.UnixNano()),
		Member: l.GroupID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store listing %s: %w", l.GroupID, err)
	}
	return nil
}

func (s *RedisStore) Purchases(ctx context.Context, buyer string) ([]Purchase, error) {
	raws, err := s.rdb.LRange(ctx, purchasesKey(buyer), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list purchases for %s: %w", buyer, err)
	}

	out := make([]Purchase, 0, len(raws))
	for _, raw := range raws {
		var p Purchase
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode purchase: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *RedisStore) AppendPurchase(ctx context.Context, p Purchase) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode purchase: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	// LPush keeps newest first, matching the Purchases contract.
	pipe.LPush(ctx, purchasesKey(p.Buyer), data)
	pipe.SAdd(ctx, purchasedSetKey(p.Buyer), p.GroupID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store purchase for %s: %w", p.Buyer, err)
	}
	return nil
}

func (s *RedisStore) Purchased(ctx context.Context, buyer, groupID string) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, purchasedSetKey(buyer), groupID).Result()
	if err != nil {
		return false, fmt.Errorf("check purchase for %s: %w", buyer, err)
	}
	return ok, nil
}

var _ Store = (*RedisStore)(nil)
