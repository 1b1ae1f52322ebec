package status

import (
	"context"
	"testing"

	"multicollateral/core"
	"multicollateral/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuspendResume(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New().Properties())

	suspended, err := s.IsSuspended(ctx, core.SectionGlobal)
	require.NoError(t, err)
	assert.False(t, suspended)

	require.NoError(t, s.Suspend(ctx, core.PoolSection("eth"), "oracle incident"))

	suspended, _ = s.IsSuspended(ctx, core.PoolSection("eth"))
	assert.True(t, suspended)
	suspended, _ = s.IsSuspended(ctx, core.SectionGlobal)
	assert.False(t, suspended)

	require.NoError(t, s.Resume(ctx, core.PoolSection("eth")))
	suspended, _ = s.IsSuspended(ctx, core.PoolSection("eth"))
	assert.False(t, suspended)
}
