package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/types"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNop(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	var c ResultCache = Nop{}

	require.NoError(t, c.SetResult(ctx, id, &types.Aggregate{OverallTotal: 5}))
	got, err := c.GetResult(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Invalidate(ctx, id))
}

func TestRedis_KeyAndDefaults(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer func() { _ = client.Close() }()

	r := NewRedisWithClient(client, "", 0)
	id := uuid.MustParse("2d7f4b1e-8a3c-4d5e-9f60-7a8b9c0d1e2f")

	assert.Equal(t, "interview-coach:result:2d7f4b1e-8a3c-4d5e-9f60-7a8b9c0d1e2f", r.Key(id))
	assert.Equal(t, DefaultTTL, r.ttl)
}

func TestRedis_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping integration test: REDIS_ADDR not set")
	}
	ctx := context.Background()

	r, err := NewRedis(ctx, Options{Addr: addr, Namespace: "coach-test-" + uuid.NewString()[:8], TTL: time.Minute})
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}
	defer func() { _ = r.Close() }()

	id := uuid.New()
	miss, err := r.GetResult(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, miss)

	agg := &types.Aggregate{
		PerSkill:        []types.SkillScore{{Skill: "Go", Obtained: 3, Total: 5, Percent: 60}},
		OverallObtained: 3,
		OverallTotal:    5,
		OverallPercent:  60,
	}
	require.NoError(t, r.SetResult(ctx, id, agg))

	hit, err := r.GetResult(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, agg, hit)

	require.NoError(t, r.Invalidate(ctx, id))
	miss, err = r.GetResult(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestNewRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedis(ctx, Options{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
