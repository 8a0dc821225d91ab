package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

func TestIsAffirmative(t *testing.T) {
	for _, s := range []string{"yes", "Yes", "YES", "yep", "sure", "ok", "okay", "do it", "go ahead", "y"} {
		assert.True(t, IsAffirmative(s), "%q must confirm", s)
	}
	for _, s := range []string{"yes delete everything else too", "maybe", "show my tasks", "no", ""} {
		assert.False(t, IsAffirmative(s), "%q must not confirm", s)
	}
}

func TestIsNegative(t *testing.T) {
	for _, s := range []string{"no", "No", "NO", "nope", "cancel", "never mind", "nevermind", "don't", "n"} {
		assert.True(t, IsNegative(s), "%q must decline", s)
	}
	for _, s := range []string{"yes", "not sure", "delete it", ""} {
		assert.False(t, IsNegative(s), "%q must not decline", s)
	}
}

func TestSelectCandidate(t *testing.T) {
	cands := []ports.Candidate{
		{TaskID: 12, Title: "buy milk"},
		{TaskID: 7, Title: "buy bread"},
		{TaskID: 3, Title: "buy stamps"},
	}

	// Ordinal words pick by position, whatever the casing.
	c, ok := SelectCandidate("the second one", cands)
	require.True(t, ok)
	assert.Equal(t, int64(7), c.TaskID)

	c, ok = SelectCandidate("The First one", cands)
	require.True(t, ok)
	assert.Equal(t, int64(12), c.TaskID)

	// A listed task id wins over positional reading.
	c, ok = SelectCandidate("3", cands)
	require.True(t, ok)
	assert.Equal(t, int64(3), c.TaskID)

	// A number that is not a listed id falls back to 1-based position.
	c, ok = SelectCandidate("2", cands)
	require.True(t, ok)
	assert.Equal(t, int64(7), c.TaskID)

	// Explicit id forms.
	c, ok = SelectCandidate("task 12", cands)
	require.True(t, ok)
	assert.Equal(t, int64(12), c.TaskID)

	// Restated exact title.
	c, ok = SelectCandidate("buy stamps", cands)
	require.True(t, ok)
	assert.Equal(t, int64(3), c.TaskID)

	// Out of range or unrelated input is a miss.
	_, ok = SelectCandidate("99", cands)
	assert.False(t, ok)
	_, ok = SelectCandidate("the fifth one", cands)
	assert.False(t, ok)
	_, ok = SelectCandidate("actually show my tasks", cands)
	assert.False(t, ok)
	_, ok = SelectCandidate("1", nil)
	assert.False(t, ok)
}
