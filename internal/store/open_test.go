package store

import (
	"context"
	"testing"

	"tutorials/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cases := []struct {
		cfg  config.StoreConfig
		want any
	}{
		{config.StoreConfig{Backend: config.BackendMemory}, &MemoryStore{}},
		{config.StoreConfig{Backend: config.BackendBadger, BadgerPath: t.TempDir()}, &BadgerStore{}},
		{config.StoreConfig{Backend: config.BackendRedis, RedisAddr: mr.Addr()}, &RedisStore{}},
	}

	for _, tc := range cases {
		t.Run(tc.cfg.Backend, func(t *testing.T) {
			st, err := Open(ctx, tc.cfg, zap.NewNop())
			require.NoError(t, err)
			defer st.Close()
			assert.IsType(t, tc.want, st)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Backend: "sqlite"}, zap.NewNop())
	assert.Error(t, err)
}
