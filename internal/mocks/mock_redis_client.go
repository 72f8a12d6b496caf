package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient is an in-memory stand-in for the narrow Redis surface the
// handlers use: plain keys plus sets. TTLs are ignored; tests drive expiry
// through the locker mock instead.
type MockRedisClient struct {
	mu      sync.Mutex
	strings map[string]string
	sets    map[string]map[string]struct{}

	// Err, when set, is returned by every command.
	Err error
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		strings: make(map[string]string),
		sets:    make(map[string]map[string]struct{}),
	}
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.Err != nil {
		cmd.SetErr(m.Err)
		return cmd
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.strings[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}

	cmd.SetVal(value)
	return cmd
}

func (m *MockRedisClient) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	cmd := redis.NewSliceCmd(ctx)
	if m.Err != nil {
		cmd.SetErr(m.Err)
		return cmd
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	values := make([]interface{}, len(keys))
	for i, key := range keys {
		if value, ok := m.strings[key]; ok {
			values[i] = value
		}
	}

	cmd.SetVal(values)
	return cmd
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.Err != nil {
		cmd.SetErr(m.Err)
		return cmd
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.strings[key] = asString(value)
	cmd.SetVal("OK")
	return cmd
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if m.Err != nil {
		cmd.SetErr(m.Err)
		return cmd
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for _, key := range keys {
		if _, ok := m.strings[key]; ok {
			delete(m.strings, key)
			deleted++
		}
		if _, ok := m.sets[key]; ok {
			delete(m.sets, key)
			deleted++
		}
	}

	cmd.SetVal(deleted)
	return cmd
}

func (m *MockRedisClient) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if m.Err != nil {
		cmd.SetErr(m.Err)
		return cmd
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{})
		m.sets[key] = set
	}

	var added int64
	for _, member := range members {
		s := asString(member)
		if _, ok := set[s]; !ok {
			set[s] = struct{}{}
			added++
		}
	}

	cmd.SetVal(added)
	return cmd
}

func (m *MockRedisClient) SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if m.Err != nil {
		cmd.SetErr(m.Err)
		return cmd
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.sets[key]

	var removed int64
	for _, member := range members {
		s := asString(member)
		if _, ok := set[s]; ok {
			delete(set, s)
			removed++
		}
	}

	cmd.SetVal(removed)
	return cmd
}

func (m *MockRedisClient) SMembers(ctx context.Context, key string) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	if m.Err != nil {
		cmd.SetErr(m.Err)
		return cmd
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	members := make([]string, 0, len(m.sets[key]))
	for member := range m.sets[key] {
		members = append(members, member)
	}

	cmd.SetVal(members)
	return cmd
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
