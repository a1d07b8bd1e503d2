package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Definition {
	return &Definition{
		ID:   "d",
		Name: "D",
		Nodes: []Node{
			{ID: "A", Label: "First"},
			{ID: "B", Label: "Second"},
		},
		Transitions: []Transition{
			{ID: "t_1", FromNodeID: "A", ToNodeID: "B"},
			{ID: "t_2", FromNodeID: "A", ToNodeID: "A", Condition: "again"},
		},
		StartPoints: []StartPoint{{NodeID: "A"}},
	}
}

func TestDefinitionLookups(t *testing.T) {
	d := sample()

	require.NotNil(t, d.NodeByID("A"))
	assert.Nil(t, d.NodeByID("Z"))

	require.NotNil(t, d.NodeByLabel("Second"))
	assert.Equal(t, "B", d.NodeByLabel("Second").ID)
	assert.Nil(t, d.NodeByLabel("Third"))

	out := d.TransitionsFrom("A")
	require.Len(t, out, 2)
	assert.Equal(t, "t_1", out[0].ID)
	assert.Empty(t, d.TransitionsFrom("B"))
}

func TestDefinitionValidate(t *testing.T) {
	require.NoError(t, sample().Validate())

	d := sample()
	d.Transitions = append(d.Transitions, Transition{ID: "t_3", FromNodeID: "A", ToNodeID: "ghost"})
	var dangling *DanglingReferenceError
	require.ErrorAs(t, d.Validate(), &dangling)
	assert.Equal(t, "ghost", dangling.NodeID)
	assert.Equal(t, "t_3", dangling.TransitionID)

	d = sample()
	d.StartPoints = append(d.StartPoints, StartPoint{NodeID: "ghost"})
	require.ErrorAs(t, d.Validate(), &dangling)
	assert.Equal(t, "ghost", dangling.NodeID)
}
