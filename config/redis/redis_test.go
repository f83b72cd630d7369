package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyURL", func(t *testing.T) {
		client, err := NewClient(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, client)
		Close(client)
	})

	t.Run("InvalidURL", func(t *testing.T) {
		_, err := NewClient(ctx, "://nope")
		assert.Error(t, err)
	})

	t.Run("Connects", func(t *testing.T) {
		s := miniredis.RunT(t)

		client, err := NewClient(ctx, "redis://"+s.Addr())
		require.NoError(t, err)
		require.NotNil(t, client)
		defer Close(client)

		assert.NoError(t, client.Set(ctx, "k", "v", 0).Err())
		s.CheckGet(t, "k", "v")
	})
}
