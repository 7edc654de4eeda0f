package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNilClientIsEmpty(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.Nil(t, New("", "", 0))
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Ping(ctx))
}

func TestUnreachableRedisFailsSafe(t *testing.T) {
	c := NewWithClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer c.Close()
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Error(t, c.Ping(ctx))
}

// stubHook answers GET without a server: a stored key returns its value,
// anything else is redis.Nil.
type stubHook map[string]string

func (h stubHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h stubHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h stubHook) ProcessHook(_ redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		get, ok := cmd.(*redis.StringCmd)
		if !ok {
			return nil
		}
		if v, found := h[fmt.Sprint(cmd.Args()[1])]; found {
			get.SetVal(v)
			return nil
		}
		cmd.SetErr(redis.Nil)
		return redis.Nil
	}
}

func TestGet(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	rdb.AddHook(stubHook{"present": "v"})
	c := NewWithClient(rdb)
	defer c.Close()
	ctx := context.Background()

	tests := []struct {
		name     string
		key      string
		expected []byte
	}{
		{name: "hit", key: "present", expected: []byte("v")},
		{name: "missing key", key: "absent", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Get(ctx, tt.key)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
