package agent

import (
	"fmt"
	"strings"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// Response composition. Every user-visible reply comes from one of these
// templates so wording stays consistent and testable.

func composeCreated(task ports.Task) string {
	return fmt.Sprintf("Got it! I've added '%s' to your tasks.", task.Title)
}

func composeCompleted(task ports.Task) string {
	return fmt.Sprintf("Great! I've marked '%s' as done.", task.Title)
}

func composeUpdated(field, newValue string) string {
	return fmt.Sprintf("Updated! I've changed the %s to '%s'.", field, newValue)
}

func composeDeleted(title string) string {
	return fmt.Sprintf("Done! I've deleted '%s' from your tasks.", title)
}

func composeConfirmDelete(title string) string {
	return fmt.Sprintf("Are you sure you want to delete '%s'? This can't be undone. Reply 'yes' to confirm or 'no' to cancel.", title)
}

func composeCancelled() string {
	return "Okay, I won't do that. The task is safe."
}

func composeNotFound(ref string) string {
	return fmt.Sprintf("I couldn't find that task (%s). Would you like me to show your tasks?", ref)
}

func composeAmbiguous(candidates []ports.Candidate) string {
	var b strings.Builder
	b.WriteString("I found a few tasks that could match. Which one did you mean?\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s (ID: %d)\n", i+1, c.Title, c.TaskID)
	}
	b.WriteString("You can reply with a number or the exact title.")
	return b.String()
}

func composeList(tasks []ports.Task, filter ports.StatusFilter) string {
	if len(tasks) == 0 {
		switch filter {
		case ports.FilterPending:
			return "You have no pending tasks. Great job!"
		case ports.FilterCompleted:
			return "You haven't completed any tasks yet."
		default:
			return "You have no tasks. Great job!"
		}
	}

	var b strings.Builder
	switch filter {
	case ports.FilterPending:
		fmt.Fprintf(&b, "Here are your pending tasks (%d):\n", len(tasks))
	case ports.FilterCompleted:
		fmt.Fprintf(&b, "Here are your completed tasks (%d):\n", len(tasks))
	default:
		fmt.Fprintf(&b, "Here are your tasks (%d):\n", len(tasks))
	}
	for i, t := range tasks {
		marker := ""
		if filter == ports.FilterAll && t.Status == ports.TaskCompleted {
			marker = " [done]"
		}
		fmt.Fprintf(&b, "%d. %s (ID: %d)%s\n", i+1, t.Title, t.ID, marker)
	}
	return strings.TrimRight(b.String(), "\n")
}

func composeGreeting() string {
	return "Hi there! I'm Taskie, your task assistant. You can ask me to add, list, complete, update, or delete tasks. What can I do for you?"
}

func composeHelp() string {
	return strings.Join([]string{
		"Here's what I can do:",
		"- Add a task: \"add a task to buy groceries\"",
		"- List tasks: \"show my tasks\" or \"show pending tasks\"",
		"- Complete a task: \"mark task 3 as done\"",
		"- Update a task: \"rename task 3 to 'buy oat milk'\"",
		"- Delete a task: \"delete task 3\" (I'll ask you to confirm)",
	}, "\n")
}

func composeUnknown() string {
	return "I'm not sure what you'd like me to do. You can ask me to add, list, complete, update, or delete tasks. Try 'help' to see examples."
}

func composeClarification(c *Clarification) string {
	return c.Prompt
}

func composeTrouble() string {
	return "Sorry, I'm having trouble reaching your tasks right now. Please try again in a moment."
}

func composeBusy() string {
	return "I'm still working on your last message. Give me a second and try again."
}

// composeMulti joins per-clause replies of a compound message, prefixing a
// halt notice when a later clause never ran.
func composeMulti(parts []string, halted bool) string {
	joined := strings.Join(parts, "\n")
	if halted {
		joined += "\nI stopped there, so the rest of your request wasn't done."
	}
	return joined
}
