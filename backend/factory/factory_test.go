package factory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/cachex/backend"
)

func TestCreateRejectsBlank(t *testing.T) {
	for _, s := range []string{"", "  \t"} {
		_, _, err := Create(context.Background(), Config{ConnectionString: s})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestCreateRejectsMalformed(t *testing.T) {
	_, _, err := Create(context.Background(), Config{ConnectionString: "host:1,poolsize=-1"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCreateRemote(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	b, kind, err := Create(ctx, Config{ConnectionString: mr.Addr() + ",defaultDatabase=1"})
	require.NoError(t, err)
	defer b.Close(ctx)

	assert.Equal(t, backend.KindRemote, kind)
	assert.Equal(t, backend.KindRemote, b.Kind())

	require.NoError(t, b.SetString(ctx, "k", "v", time.Minute))
	mr.Select(1)
	v, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestCreateUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, _, err = Create(context.Background(), Config{ConnectionString: addr, DialTimeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestCreateFallback(t *testing.T) {
	b := CreateFallback()
	require.NotNil(t, b)
	assert.Equal(t, backend.KindInMemory, b.Kind())
}
