package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeduperFirstSeen(t *testing.T) {
	d := NewMemoryDeduper(time.Minute)
	ctx := context.Background()

	first, err := d.FirstSeen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.FirstSeen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := d.FirstSeen(ctx, "evt_2")
	require.NoError(t, err)
	assert.True(t, other)
}

func TestMemoryDeduperForget(t *testing.T) {
	d := NewMemoryDeduper(time.Minute)
	ctx := context.Background()

	_, err := d.FirstSeen(ctx, "evt_1")
	require.NoError(t, err)
	require.NoError(t, d.Forget(ctx, "evt_1"))

	again, err := d.FirstSeen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, again, "forgotten keys count as first sightings again")
}

func TestMemoryDeduperExpiry(t *testing.T) {
	d := NewMemoryDeduper(20 * time.Millisecond)
	ctx := context.Background()

	first, err := d.FirstSeen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, first)

	time.Sleep(40 * time.Millisecond)

	again, err := d.FirstSeen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, again, "expired keys count as first sightings again")
}
