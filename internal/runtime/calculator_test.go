package runtime

import (
	"testing"

	"github.com/actiflow/actiflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func def(nodes []domain.Node, transitions []domain.Transition, starts ...string) *domain.Definition {
	d := &domain.Definition{ID: "d", Name: "D", Nodes: nodes, Transitions: transitions}
	for _, s := range starts {
		d.StartPoints = append(d.StartPoints, domain.StartPoint{NodeID: s})
	}
	return d
}

func TestStartNodeEmptyDefinition(t *testing.T) {
	_, err := StartNode(&domain.Definition{ID: "d"})
	require.ErrorIs(t, err, domain.ErrNoNodes)
}

func TestStartNodeFirstNodeFallback(t *testing.T) {
	d := def([]domain.Node{{ID: "A", Label: "A"}, {ID: "B", Label: "B"}}, nil)

	start, err := StartNode(d)
	require.NoError(t, err)
	assert.Equal(t, "A", start)
}

func TestStartNodeAdvancesThroughStartMarker(t *testing.T) {
	d := def(
		[]domain.Node{{ID: "start", Label: "Start"}, {ID: "A", Label: "A"}},
		[]domain.Transition{{ID: "t_1", FromNodeID: "start", ToNodeID: "A"}},
		"start",
	)

	start, err := StartNode(d)
	require.NoError(t, err)
	assert.Equal(t, "A", start)
}

func TestStartNodeAdvancesThroughUnlabeledEntry(t *testing.T) {
	d := def(
		[]domain.Node{{ID: "n1"}, {ID: "A", Label: "A"}},
		[]domain.Transition{{ID: "t_1", FromNodeID: "n1", ToNodeID: "A"}},
		"n1",
	)

	start, err := StartNode(d)
	require.NoError(t, err)
	assert.Equal(t, "A", start)
}

func TestStartNodeSingleHopOnly(t *testing.T) {
	// Two chained markers: the advance stops after one hop.
	d := def(
		[]domain.Node{{ID: "n1"}, {ID: "n2"}, {ID: "A", Label: "A"}},
		[]domain.Transition{
			{ID: "t_1", FromNodeID: "n1", ToNodeID: "n2"},
			{ID: "t_2", FromNodeID: "n2", ToNodeID: "A"},
		},
		"n1",
	)

	start, err := StartNode(d)
	require.NoError(t, err)
	assert.Equal(t, "n2", start)
}

func TestStartNodeStaysOnLabeledEntry(t *testing.T) {
	d := def(
		[]domain.Node{{ID: "Welcome", Label: "Welcome"}, {ID: "A", Label: "A"}},
		[]domain.Transition{{ID: "t_1", FromNodeID: "Welcome", ToNodeID: "A"}},
		"Welcome",
	)

	start, err := StartNode(d)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", start)
}

func TestStartNodeStaysOnFanOut(t *testing.T) {
	d := def(
		[]domain.Node{{ID: "start", Label: "Start"}, {ID: "A", Label: "A"}, {ID: "B", Label: "B"}},
		[]domain.Transition{
			{ID: "t_1", FromNodeID: "start", ToNodeID: "A"},
			{ID: "t_2", FromNodeID: "start", ToNodeID: "B"},
		},
		"start",
	)

	start, err := StartNode(d)
	require.NoError(t, err)
	assert.Equal(t, "start", start)
}

func TestStartNodeStaysOnGuardedEdge(t *testing.T) {
	d := def(
		[]domain.Node{{ID: "start", Label: "Start"}, {ID: "A", Label: "A"}},
		[]domain.Transition{{ID: "t_1", FromNodeID: "start", ToNodeID: "A", Condition: "ready"}},
		"start",
	)

	start, err := StartNode(d)
	require.NoError(t, err)
	assert.Equal(t, "start", start)
}

func TestPayloadUnknownNode(t *testing.T) {
	d := def([]domain.Node{{ID: "A", Label: "A"}}, nil)
	_, err := Payload(d, "missing")
	require.Error(t, err)
}

func TestPayloadTerminalNode(t *testing.T) {
	d := def([]domain.Node{{ID: "A", Label: "All done"}}, nil)

	p, err := Payload(d, "A")
	require.NoError(t, err)
	assert.False(t, p.IsChoice)
	assert.Equal(t, "All done", p.Text)
	assert.Empty(t, p.Choices)
}

func TestPayloadLinearNodeIsNotChoice(t *testing.T) {
	d := def(
		[]domain.Node{{ID: "A", Label: "A"}, {ID: "B", Label: "B"}},
		[]domain.Transition{{ID: "t_1", FromNodeID: "A", ToNodeID: "B"}},
	)

	p, err := Payload(d, "A")
	require.NoError(t, err)
	assert.False(t, p.IsChoice)
	assert.Equal(t, "A", p.Text)
}

func TestPayloadFanOutIsChoice(t *testing.T) {
	d := def(
		[]domain.Node{
			{ID: "A", Label: "A"},
			{ID: "B", Label: "Paint it red"},
			{ID: "C"},
		},
		[]domain.Transition{
			{ID: "t_1", FromNodeID: "A", ToNodeID: "B", Condition: "red"},
			{ID: "t_2", FromNodeID: "A", ToNodeID: "C", Condition: "blue"},
		},
	)

	p, err := Payload(d, "A")
	require.NoError(t, err)
	require.True(t, p.IsChoice)
	require.Len(t, p.Choices, 2)

	assert.Equal(t, 0, p.Choices[0].Index)
	assert.Equal(t, "Paint it red", p.Choices[0].DisplayText)
	assert.Equal(t, "B", p.Choices[0].TargetNodeID)
	assert.Equal(t, "red", p.Choices[0].Condition)

	// An unlabeled target falls back to its id.
	assert.Equal(t, "C", p.Choices[1].DisplayText)
}

func TestPayloadGuardedSingleEdgeIsChoice(t *testing.T) {
	d := def(
		[]domain.Node{{ID: "A", Label: "A"}, {ID: "A2", Label: "A"}},
		[]domain.Transition{{ID: "t_1", FromNodeID: "A", ToNodeID: "A2", Condition: "retry"}},
	)

	p, err := Payload(d, "A")
	require.NoError(t, err)
	require.True(t, p.IsChoice)
	require.Len(t, p.Choices, 1)
	assert.Equal(t, "retry", p.Choices[0].Condition)
}

func TestPayloadActionNoteRendersActionName(t *testing.T) {
	d := def([]domain.Node{{
		ID:           "A",
		Label:        "A",
		NoteMarkdown: `{"action":"SendEmail","params":{}}`,
	}}, nil)

	p, err := Payload(d, "A")
	require.NoError(t, err)
	assert.Equal(t, "Action: SendEmail", p.Text)
}

func TestPayloadJSONNoteWithoutActionShownVerbatim(t *testing.T) {
	d := def([]domain.Node{{
		ID:           "A",
		Label:        "A",
		NoteMarkdown: `{"hint":"keep going"}`,
	}}, nil)

	p, err := Payload(d, "A")
	require.NoError(t, err)
	assert.Equal(t, `{"hint":"keep going"}`, p.Text)
}

func TestPayloadMalformedNoteShownVerbatim(t *testing.T) {
	d := def([]domain.Node{{
		ID:           "A",
		Label:        "A",
		NoteMarkdown: `{"action": broken`,
	}}, nil)

	p, err := Payload(d, "A")
	require.NoError(t, err)
	assert.Equal(t, `{"action": broken`, p.Text)
}
