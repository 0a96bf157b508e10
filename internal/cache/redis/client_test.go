package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdgraph/backend/pkg/circuitbreaker"
)

// unreachable points at a port nothing listens on, so every call fails fast.
func unreachable() *Client {
	return newClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}), time.Minute)
}

func TestNewClientFailsWithoutServer(t *testing.T) {
	_, err := NewClient("127.0.0.1", 1, "", 0, time.Minute)
	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestGraphKey(t *testing.T) {
	assert.Equal(t, "graph:pattern:abc", graphKey("pattern:abc"))
}

func TestGetGraphReportsBackendErrors(t *testing.T) {
	c := unreachable()
	defer c.Close()

	var dest map[string]interface{}
	found, err := c.GetGraph(context.Background(), "fp", &dest)
	assert.False(t, found)
	assert.ErrorContains(t, err, "failed to get graph cache")
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	c := unreachable()
	defer c.Close()

	for i := 0; i < 5; i++ {
		_ = c.SetGraph(context.Background(), "fp", map[string]int{"nodes": 0})
	}

	assert.Equal(t, circuitbreaker.StateOpen, c.breaker.State())
	err := c.SetGraph(context.Background(), "fp", map[string]int{"nodes": 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
}

func TestSetGraphRejectsUnencodableValues(t *testing.T) {
	c := unreachable()
	defer c.Close()

	err := c.SetGraph(context.Background(), "fp", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal graph")
}

func live(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	c := newClient(redis.NewClient(&redis.Options{Addr: server.Addr()}), time.Minute)
	t.Cleanup(func() { c.Close() })
	return c, server
}

type cachedGraph struct {
	Nodes []string `json:"nodes"`
}

func TestGetGraphMissKeepsBreakerClosed(t *testing.T) {
	c, _ := live(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		var dest cachedGraph
		found, err := c.GetGraph(ctx, "fp", &dest)
		require.NoError(t, err)
		assert.False(t, found)
	}

	assert.Equal(t, circuitbreaker.StateClosed, c.breaker.State())
	require.NoError(t, c.SetGraph(ctx, "fp", cachedGraph{Nodes: []string{"react"}}))
}

func TestSetThenGetGraph(t *testing.T) {
	c, server := live(t)
	ctx := context.Background()

	require.NoError(t, c.SetGraph(ctx, "pattern:abc", cachedGraph{Nodes: []string{"react", "hooks"}}))
	assert.Equal(t, time.Minute, server.TTL(graphKey("pattern:abc")))

	var dest cachedGraph
	found, err := c.GetGraph(ctx, "pattern:abc", &dest)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"react", "hooks"}, dest.Nodes)
}

func TestGetGraphCorruptEntry(t *testing.T) {
	c, server := live(t)
	require.NoError(t, server.Set(graphKey("bad"), "not json"))

	var dest cachedGraph
	found, err := c.GetGraph(context.Background(), "bad", &dest)
	assert.False(t, found)
	assert.ErrorContains(t, err, "failed to unmarshal graph")
	assert.Equal(t, circuitbreaker.StateClosed, c.breaker.State())
}

func TestInvalidateGraphs(t *testing.T) {
	c, server := live(t)
	ctx := context.Background()

	require.NoError(t, c.SetGraph(ctx, "a", cachedGraph{}))
	require.NoError(t, c.SetGraph(ctx, "b", cachedGraph{}))
	require.NoError(t, server.Set("session:1", "keep"))

	require.NoError(t, c.InvalidateGraphs(ctx))

	assert.False(t, server.Exists(graphKey("a")))
	assert.False(t, server.Exists(graphKey("b")))
	assert.True(t, server.Exists("session:1"))

	var dest cachedGraph
	found, err := c.GetGraph(ctx, "a", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}
