package publisher

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamForIsStable(t *testing.T) {
	p := NewRedisPublisher("localhost:6379", 0, "price_results", 8, 100)
	defer p.Close()

	key := "prod-1_https://robotistan.com/urun/1"
	first := p.StreamFor(key)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.StreamFor(key))
	}
	assert.Regexp(t, `^price_results:[0-7]$`, first)

	single := NewRedisPublisher("localhost:6379", 0, "price_results", 0, 100)
	defer single.Close()
	assert.Equal(t, "price_results:0", single.StreamFor(key))
}

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	publisher := NewRedisPublisher("localhost:6379", 0, "test_price_stream", 2, 10)
	defer publisher.Close()

	if err := publisher.Ping(ctx); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	key := "prod-1_https://example.com/p/1"
	stream := publisher.StreamFor(key)
	publisher.client.Del(ctx, stream)
	defer publisher.client.Del(ctx, "test_price_stream:0", "test_price_stream:1")

	require.NoError(t, publisher.Publish(ctx, key, []byte(`{"price":12.5}`)))

	entries, err := publisher.client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, key, entries[0].Values["key"])

	payload, err := base64.StdEncoding.DecodeString(entries[0].Values["payload"].(string))
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":12.5}`, string(payload))

	for i := 0; i < 15; i++ {
		require.NoError(t, publisher.Publish(ctx, key, []byte(`{}`)))
	}
	require.NoError(t, publisher.TrimStreams(ctx))

	length, err := publisher.client.XLen(ctx, stream).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(10), length)
}
