package memory

import (
	"context"
	"testing"

	"github.com/actiflow/actiflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceStoreRoundTrip(t *testing.T) {
	s := NewInstanceStore()
	ctx := context.Background()

	state := domain.NewInstanceState("A")
	state.Variables["k"] = "v"
	require.NoError(t, s.Save(ctx, "inst-1", state))

	loaded, err := s.Load(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "A", loaded.CurrentNodeID)
	assert.Equal(t, "v", loaded.Variables["k"])
}

func TestInstanceStoreNotFound(t *testing.T) {
	s := NewInstanceStore()
	_, err := s.Load(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrInstanceNotFound)
}

func TestInstanceStoreIsolatesCopies(t *testing.T) {
	s := NewInstanceStore()
	ctx := context.Background()

	state := domain.NewInstanceState("A")
	require.NoError(t, s.Save(ctx, "inst-1", state))

	// Mutating the saved value after the fact must not leak into the store.
	state.Variables["leak"] = "yes"

	loaded, err := s.Load(ctx, "inst-1")
	require.NoError(t, err)
	assert.NotContains(t, loaded.Variables, "leak")

	// Nor does mutating a loaded copy.
	loaded.CurrentNodeID = "Z"
	again, err := s.Load(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "A", again.CurrentNodeID)
}

func TestInstanceStoreDeleteAndList(t *testing.T) {
	s := NewInstanceStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a", domain.NewInstanceState("A")))
	require.NoError(t, s.Save(ctx, "b", domain.NewInstanceState("B")))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Load(ctx, "a")
	require.ErrorIs(t, err, domain.ErrInstanceNotFound)
}

func TestDefinitionStore(t *testing.T) {
	s := NewDefinitionStore()
	ctx := context.Background()

	def := &domain.Definition{ID: "wf", Name: "Workflow", Nodes: []domain.Node{{ID: "A"}}}
	require.NoError(t, s.Store(ctx, def))

	ok, err := s.Exists(ctx, "wf")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetByID(ctx, "wf")
	require.NoError(t, err)
	assert.Equal(t, "Workflow", got.Name)

	_, err = s.GetByID(ctx, "other")
	require.ErrorIs(t, err, domain.ErrDefinitionNotFound)

	ok, err = s.Exists(ctx, "other")
	require.NoError(t, err)
	assert.False(t, ok)
}
