package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// Normalizer prepares raw utterances for classification. It is pure: the
// same input and history always produce the same output, and malformed
// input degrades to a normalized-but-unintelligible string rather than
// failing.
type Normalizer struct {
	lookbackTurns int
}

// NewNormalizer creates a normalizer with the given history lookback bound.
func NewNormalizer(lookbackTurns int) *Normalizer {
	return &Normalizer{lookbackTurns: lookbackTurns}
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	pronounRe    = regexp.MustCompile(`(?i)\b(?:it|that one|that task|this one|this task)\b`)
)

// NormalizeText trims, collapses whitespace and strips punctuation noise
// without touching conversation context. Letter case is preserved so
// extracted titles keep the user's capitalization; every pattern matched
// against the result is case-insensitive. Used directly for pending-state
// replies, where pronoun substitution would mangle phrases like "do it".
func (n *Normalizer) NormalizeText(raw string) string {
	s := strings.TrimSpace(raw)
	s = whitespaceRe.ReplaceAllString(s, " ")

	// Strip control characters; keep punctuation the extractor relies on
	// (colons, quotes, '#', periods separating clauses).
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()

	return strings.TrimRight(s, " \t!?.")
}

// Normalize applies NormalizeText and then resolves pronoun-like references
// ("it", "that one") against the most recently mentioned task within the
// lookback window. An unresolved pronoun stays in place; extraction treats
// it as a missing reference rather than a title.
func (n *Normalizer) Normalize(raw string, prior []ports.Turn) string {
	s := n.NormalizeText(raw)

	if !pronounRe.MatchString(s) {
		return s
	}

	id, ok := n.lastMentionedTask(prior)
	if !ok {
		return s
	}
	return pronounRe.ReplaceAllString(s, fmt.Sprintf("task %d", id))
}

// lastMentionedTask scans prior turns newest-first for the most recent task
// the assistant acted on or the user referenced by id.
func (n *Normalizer) lastMentionedTask(prior []ports.Turn) (int64, bool) {
	start := len(prior) - n.lookbackTurns
	if start < 0 {
		start = 0
	}

	for i := len(prior) - 1; i >= start; i-- {
		turn := prior[i]

		for j := len(turn.Invocations) - 1; j >= 0; j-- {
			if id, ok := taskIDFromInvocation(turn.Invocations[j]); ok {
				return id, true
			}
		}

		if len(turn.Params) > 0 {
			var p Params
			if err := json.Unmarshal(turn.Params, &p); err == nil {
				if id, ok := parseTaskID(p.Ref); ok {
					return id, true
				}
			}
		}
	}
	return 0, false
}

// taskIDFromInvocation pulls the acted-on task id out of a recorded tool
// call, preferring the output (authoritative) over the input.
func taskIDFromInvocation(inv ports.ToolInvocation) (int64, bool) {
	if len(inv.Output) > 0 {
		var out struct {
			ID     int64 `json:"id"`
			TaskID int64 `json:"task_id"`
		}
		if err := json.Unmarshal(inv.Output, &out); err == nil {
			if out.ID > 0 {
				return out.ID, true
			}
			if out.TaskID > 0 {
				return out.TaskID, true
			}
		}
	}

	if len(inv.Input) > 0 {
		var in struct {
			TaskID int64 `json:"task_id"`
		}
		if err := json.Unmarshal(inv.Input, &in); err == nil && in.TaskID > 0 {
			return in.TaskID, true
		}
	}
	return 0, false
}
