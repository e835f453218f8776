package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mapCache struct {
	values map[string][]byte
	err    error
}

func newMapCache() *mapCache {
	return &mapCache{values: make(map[string][]byte)}
}

func (m *mapCache) Get(key string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return nil, ErrMiss
}

func (m *mapCache) Set(key string, value []byte, expiration time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *mapCache) Delete(key string) error {
	delete(m.values, key)
	return nil
}

func TestHostBlock(t *testing.T) {
	c := newMapCache()

	assert.False(t, HostBlocked(c, "example.com"))

	assert.NoError(t, BlockHost(c, "example.com", time.Minute))
	assert.True(t, HostBlocked(c, "example.com"))
	assert.Contains(t, c.values, "blocked:example.com")
	assert.False(t, HostBlocked(c, "other.com"))

	assert.NoError(t, UnblockHost(c, "example.com"))
	assert.False(t, HostBlocked(c, "example.com"))
}

func TestHostBlockExpired(t *testing.T) {
	c := newMapCache()
	c.values["blocked:example.com"] = []byte("1")

	assert.False(t, HostBlocked(c, "example.com"))
	assert.NotContains(t, c.values, "blocked:example.com", "expired entry is cleared")
}

func TestHostBlockCacheDown(t *testing.T) {
	c := newMapCache()
	c.err = errors.New("connection refused")

	assert.Error(t, BlockHost(c, "example.com", time.Minute))
	assert.False(t, HostBlocked(c, "example.com"))
}
