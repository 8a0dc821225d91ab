package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

func TestExtractCreate(t *testing.T) {
	cases := []struct {
		input string
		title string
		desc  string
	}{
		{"add a task to buy groceries", "buy groceries", ""},
		{"create task: finish the report", "finish the report", ""},
		{`add a task: "call the dentist"`, "call the dentist", ""},
		{"remind me to water the plants", "water the plants", ""},
		{"i need to send the invoice", "send the invoice", ""},
		{"add buy milk", "buy milk", ""},
		{"add a task to buy milk, description: oat if they have it", "buy milk", "oat if they have it"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			p, clar := Extract(IntentCreateTask, tc.input)
			require.Nil(t, clar)
			assert.Equal(t, tc.title, p.Title)
			assert.Equal(t, tc.desc, p.Description)
		})
	}
}

func TestExtractCreatePreservesCasing(t *testing.T) {
	cases := []struct {
		input string
		title string
		desc  string
	}{
		{"add task: Call dentist", "Call dentist", ""},
		{"ADD A TASK TO Buy Milk", "Buy Milk", ""},
		{"Remind me to Email Sam", "Email Sam", ""},
		{"add a task to Buy Milk, description: Oat if they have it", "Buy Milk", "Oat if they have it"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			p, clar := Extract(IntentCreateTask, tc.input)
			require.Nil(t, clar)
			assert.Equal(t, tc.title, p.Title)
			assert.Equal(t, tc.desc, p.Description)
		})
	}
}

func TestExtractCreateMissingTitle(t *testing.T) {
	p, clar := Extract(IntentCreateTask, "add")
	require.NotNil(t, clar)
	assert.Equal(t, "title", clar.Missing)
	assert.Empty(t, p.Title)
}

func TestExtractCreateCapsTitleLength(t *testing.T) {
	long := "add " + strings.Repeat("x", maxTitleLen+50)
	p, clar := Extract(IntentCreateTask, long)
	require.Nil(t, clar)
	assert.Len(t, p.Title, maxTitleLen)
}

func TestExtractRef(t *testing.T) {
	cases := []struct {
		intent Intent
		input  string
		ref    string
	}{
		{IntentCompleteTask, "mark task 3 as done", "3"},
		{IntentCompleteTask, "complete 2", "2"},
		{IntentCompleteTask, `mark "buy milk" as done`, "buy milk"},
		{IntentCompleteTask, "i finished the report", "report"},
		{IntentDeleteTask, "delete task 5", "5"},
		{IntentDeleteTask, "delete #12", "12"},
		{IntentDeleteTask, "remove the groceries task", "groceries"},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			p, clar := Extract(tc.intent, tc.input)
			require.Nil(t, clar)
			assert.Equal(t, tc.ref, p.Ref)
		})
	}
}

func TestExtractRefMissing(t *testing.T) {
	_, clar := Extract(IntentDeleteTask, "delete")
	require.NotNil(t, clar)
	assert.Equal(t, "ref", clar.Missing)
	assert.Contains(t, clar.Prompt, "delete")
}

func TestExtractRefUnresolvedPronoun(t *testing.T) {
	// A pronoun the normalizer left in place has no antecedent; treating
	// it as a title would trigger a pointless store lookup.
	for _, input := range []string{"mark it done", "complete it", "delete it", "complete that one", "Mark It as done"} {
		t.Run(input, func(t *testing.T) {
			_, clar := Extract(IntentCompleteTask, input)
			require.NotNil(t, clar)
			assert.Equal(t, "ref", clar.Missing)
		})
	}

	// A determiner before a real title still resolves.
	p, clar := Extract(IntentDeleteTask, "delete that report")
	require.Nil(t, clar)
	assert.Equal(t, "report", p.Ref)
}

func TestExtractUpdate(t *testing.T) {
	p, clar := Extract(IntentUpdateTask, "rename task 3 to buy oat milk")
	require.Nil(t, clar)
	assert.Equal(t, "3", p.Ref)
	assert.Equal(t, "buy oat milk", p.NewTitle)

	p, clar = Extract(IntentUpdateTask, "change buy milk to buy oat milk")
	require.Nil(t, clar)
	assert.Equal(t, "buy milk", p.Ref)
	assert.Equal(t, "buy oat milk", p.NewTitle)

	_, clar = Extract(IntentUpdateTask, "update task 3")
	require.NotNil(t, clar)
	assert.Equal(t, "change", clar.Missing)
}

func TestExtractStatus(t *testing.T) {
	cases := []struct {
		input  string
		status string
	}{
		{"show my tasks", string(ports.FilterAll)},
		{"show pending tasks", string(ports.FilterPending)},
		{"what's left", string(ports.FilterPending)},
		{"show completed tasks", string(ports.FilterCompleted)},
		{"list finished tasks", string(ports.FilterCompleted)},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			p, clar := Extract(IntentListTasks, tc.input)
			require.Nil(t, clar)
			assert.Equal(t, tc.status, p.Status)
		})
	}
}

func TestParseTaskID(t *testing.T) {
	id, ok := parseTaskID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	id, ok = parseTaskID("#7")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	for _, bad := range []string{"", "buy milk", "4th", "0", "-1", "3.5"} {
		_, ok := parseTaskID(bad)
		assert.False(t, ok, "ref %q must not parse as id", bad)
	}
}

func TestSplitClauses(t *testing.T) {
	clauses := SplitClauses("add buy milk and then show my tasks", 2)
	assert.Equal(t, []string{"add buy milk", "show my tasks"}, clauses)

	// Connectors without a recognized verb head never split.
	clauses = SplitClauses("add buy milk and bread", 2)
	assert.Equal(t, []string{"add buy milk and bread"}, clauses)

	// The cap bounds the number of clauses.
	clauses = SplitClauses("add a and then add b and then add c", 2)
	assert.Len(t, clauses, 2)
	assert.Equal(t, "add a", clauses[0])

	clauses = SplitClauses("show my tasks", 2)
	assert.Equal(t, []string{"show my tasks"}, clauses)
}
