package cache_test

import (
	"context"
	"testing"

	"clip-and-ship/infrastructure/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCache_Unreachable(t *testing.T) {
	client, err := cache.NewCache(context.Background(), "127.0.0.1:1", "", "", 0)
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestNewStore(t *testing.T) {
	assert.NotNil(t, cache.NewStore(nil))
}
