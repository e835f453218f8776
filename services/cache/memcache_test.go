package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs memcached on localhost:11211; skipped otherwise.
func TestMemcacheHostBlock(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")
	if err := mc.Ping(); err != nil {
		t.Skip("Memcached is not available, skipping test")
	}

	host := "memcache-test.example"
	require.NoError(t, UnblockHost(mc, host))
	assert.False(t, HostBlocked(mc, host))

	require.NoError(t, BlockHost(mc, host, 2*time.Second))
	assert.True(t, HostBlocked(mc, host))

	raw, err := mc.Get(hostBlockPrefix + host)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	require.NoError(t, UnblockHost(mc, host))
	_, err = mc.Get(hostBlockPrefix + host)
	assert.ErrorIs(t, err, ErrMiss)

	// A second delete hits a miss and still succeeds
	assert.NoError(t, UnblockHost(mc, host))
}
