package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryParseJSONObject(t *testing.T) {
	obj, ok := TryParseJSONObject(`  {"a":"1","b":2}  `)
	require.True(t, ok)
	assert.Equal(t, "1", obj["a"])

	_, ok = TryParseJSONObject("plain text")
	assert.False(t, ok)

	_, ok = TryParseJSONObject(`{"broken":`)
	assert.False(t, ok)

	_, ok = TryParseJSONObject(`["an","array"]`)
	assert.False(t, ok)
}

func TestParseActionDescriptor(t *testing.T) {
	desc, ok := ParseActionDescriptor(`{"action":"LoadProfile","params":{"id":"{{userId}}"}}`)
	require.True(t, ok)
	assert.Equal(t, "LoadProfile", desc.Action)
	assert.Equal(t, "{{userId}}", desc.Params["id"])
}

func TestParseActionDescriptorWeakTyping(t *testing.T) {
	desc, ok := ParseActionDescriptor(`{"action":"Retry","params":{"attempts":3}}`)
	require.True(t, ok)
	assert.Equal(t, "3", desc.Params["attempts"])
}

func TestParseActionDescriptorNoParams(t *testing.T) {
	desc, ok := ParseActionDescriptor(`{"action":"Ping"}`)
	require.True(t, ok)
	require.NotNil(t, desc.Params)
	assert.Empty(t, desc.Params)
}

func TestParseActionDescriptorNotActionable(t *testing.T) {
	_, ok := ParseActionDescriptor(`{"hint":"just a note"}`)
	assert.False(t, ok)

	_, ok = ParseActionDescriptor(`{"action":""}`)
	assert.False(t, ok)

	_, ok = ParseActionDescriptor("not json at all")
	assert.False(t, ok)
}

func TestInstanceStateClone(t *testing.T) {
	state := NewInstanceState("A")
	state.Variables["k"] = "v"

	clone := state.Clone()
	clone.Variables["k"] = "changed"
	clone.CurrentNodeID = "B"

	assert.Equal(t, "v", state.Variables["k"])
	assert.Equal(t, "A", state.CurrentNodeID)
}
