package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/davmount/pkg/store/mounts"
	"github.com/marmos91/davmount/pkg/store/mounts/memory"
	mountstesting "github.com/marmos91/davmount/pkg/store/mounts/testing"
)

// TestStore_Conformance runs the shared store contract suite.
func TestStore_Conformance(t *testing.T) {
	suite := &mountstesting.StoreTestSuite{
		NewStore: func() mounts.Store {
			return memory.New()
		},
	}
	suite.Run(t)
}

// TestStore_Count verifies the test-support counter.
func TestStore_Count(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.New()
	defer s.Close()

	assert.Equal(t, 0, s.Count())

	require.NoError(t, s.Save(ctx, &mounts.Record{ID: mounts.ComputeID("https://a.example.com", "a")}))
	require.NoError(t, s.Save(ctx, &mounts.Record{ID: mounts.ComputeID("https://b.example.com", "b")}))
	assert.Equal(t, 2, s.Count())

	require.NoError(t, s.Delete(ctx, mounts.ComputeID("https://a.example.com", "a")))
	assert.Equal(t, 1, s.Count())
}
