package export

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewArtifactStore(client, time.Hour)

	t.Run("round trip", func(t *testing.T) {
		in := &File{Name: "Sok Heng(INV-1).docx", ContentType: mimeDocx, Data: []byte{0x50, 0x4b, 0x03, 0x04}}
		id := NewArtifactID()
		require.NoError(t, store.Put(context.Background(), id, in))

		out, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.Get(context.Background(), "no-such-artifact")
		assert.ErrorIs(t, err, ErrArtifactNotFound)
	})

	t.Run("expired artifact is gone", func(t *testing.T) {
		id := NewArtifactID()
		err := store.Put(context.Background(), id, &File{Name: "a.pdf", ContentType: mimePDF, Data: []byte("x")})
		require.NoError(t, err)

		mr.FastForward(2 * time.Hour)

		_, err = store.Get(context.Background(), id)
		assert.ErrorIs(t, err, ErrArtifactNotFound)
	})
}
