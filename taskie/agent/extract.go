package agent

import (
	"regexp"
	"strconv"
	"strings"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

const (
	maxTitleLen       = 255
	maxDescriptionLen = 2000
)

// Params carries the fields extracted from one utterance. Only the fields
// relevant to the classified intent are set; everything else stays zero.
type Params struct {
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	Status         string `json:"status,omitempty"`
	Ref            string `json:"ref,omitempty"`
	NewTitle       string `json:"new_title,omitempty"`
	NewDescription string `json:"new_description,omitempty"`
}

// Clarification is returned when extraction succeeded structurally but a
// required field is missing, so the agent must ask instead of acting.
type Clarification struct {
	Missing string // name of the missing field
	Prompt  string // question to send back to the user
}

var (
	// Title extraction for create. Ordered: quoted forms and explicit task
	// markers first, bare verb fallback last, so "add a task to call mom"
	// never yields the title "a task to call mom".
	createQuotedRe  = regexp.MustCompile(`(?i)(?:add|create|new|make|set)\s+(?:a\s+)?(?:task|todo)?\s*[:\s]\s*['"]([^'"]+)['"]`)
	createMarkerRe  = regexp.MustCompile(`(?i)(?:add|create|new|make|set)\s+(?:a\s+)?(?:task|todo|reminder)\s+(?:to\s+|for\s+|called\s+|named\s+)?(.+)`)
	createColonRe   = regexp.MustCompile(`(?i)(?:add|create|task|todo|update|change|edit)\s*:\s*(.+)`)
	createRemindRe  = regexp.MustCompile(`(?i)(?:remind me to|remind to|don'?t forget to|don'?t forget)\s+(.+)`)
	createNeedRe    = regexp.MustCompile(`(?i)i\s+need\s+to\s+(.+)`)
	createBareRe    = regexp.MustCompile(`(?i)^(?:add|create|new)\s+(.+)`)
	descriptionRe   = regexp.MustCompile(`(?i)(?:\s*[,.]\s*|\s+)(?:description|desc|details?|note)\s*[:\s]\s*(.+)$`)
	anyQuotedRe     = regexp.MustCompile(`(?i)['"]([^'"]+)['"]`)
	taskNumberRe    = regexp.MustCompile(`(?i)(?:task|todo|number|#)\s*(\d+)`)
	bareNumberRe    = regexp.MustCompile(`(?i)\b(\d+)\b`)
	updateToRe      = regexp.MustCompile(`(?i)\s+to\s+(?:say\s+|be\s+)?['"]?([^'"]+?)['"]?$`)
	updateRefRe     = regexp.MustCompile(`(?i)^(?:rename|change|update|edit|modify)\s+(?:the\s+)?(?:task\s+)?(.+?)\s+to\s+`)
	updateDescRe    = regexp.MustCompile(`(?i)(?:description|desc|details?)\s+(?:of\s+|for\s+)?.*?\s+to\s+(.+)$`)
	statusPendingRe = regexp.MustCompile(`(?i)\b(pending|open|unfinished|incomplete|remaining|outstanding|active|left|to do|todo)\b`)
	statusDoneRe    = regexp.MustCompile(`(?i)\b(completed|complete|done|finished|closed)\b`)
	clauseSplitRe   = regexp.MustCompile(`(?i)\s*(?:,\s*)?(?:and then|then|and also|and)\s+((?:add|create|show|list|see|view|remind)\b)`)
)

// Extract pulls intent-specific parameters from a normalized utterance.
// A nil Clarification means the params are sufficient to proceed.
func Extract(intent Intent, normalized string) (Params, *Clarification) {
	switch intent {
	case IntentCreateTask:
		return extractCreate(normalized)
	case IntentListTasks:
		return Params{Status: extractStatus(normalized)}, nil
	case IntentCompleteTask, IntentDeleteTask:
		return extractRef(intent, normalized)
	case IntentUpdateTask:
		return extractUpdate(normalized)
	default:
		return Params{}, nil
	}
}

func extractCreate(s string) (Params, *Clarification) {
	title := ""
	for _, re := range []*regexp.Regexp{createQuotedRe, createColonRe, createMarkerRe, createRemindRe, createNeedRe, createBareRe} {
		if m := re.FindStringSubmatch(s); m != nil {
			title = strings.TrimSpace(m[1])
			break
		}
	}

	var p Params
	if m := descriptionRe.FindStringSubmatchIndex(title); m != nil {
		p.Description = strings.TrimSpace(title[m[2]:m[3]])
		title = strings.TrimSpace(strings.TrimRight(title[:m[0]], " ,."))
	}
	p.Title = strings.Trim(title, `'" `)

	if p.Title == "" {
		return p, &Clarification{
			Missing: "title",
			Prompt:  "What would you like to call this task?",
		}
	}
	if len(p.Title) > maxTitleLen {
		p.Title = p.Title[:maxTitleLen]
	}
	if len(p.Description) > maxDescriptionLen {
		p.Description = p.Description[:maxDescriptionLen]
	}
	return p, nil
}

// extractRef finds a task reference for complete and delete. Preference
// order: explicit number, quoted title, trailing bare text.
func extractRef(intent Intent, s string) (Params, *Clarification) {
	if m := taskNumberRe.FindStringSubmatch(s); m != nil {
		return Params{Ref: m[1]}, nil
	}
	if m := anyQuotedRe.FindStringSubmatch(s); m != nil {
		return Params{Ref: strings.TrimSpace(m[1])}, nil
	}
	if m := bareNumberRe.FindStringSubmatch(s); m != nil {
		return Params{Ref: m[1]}, nil
	}

	// Strip the leading verb phrase and treat the remainder as a title
	// fragment.
	rest := s
	for _, prefix := range []string{
		"mark", "complete", "finish", "check off", "done with", "i finished",
		"i completed", "i did", "delete", "remove", "get rid of", "discard",
		"cancel", "clear",
	} {
		if trimmed, ok := trimPrefixFold(rest, prefix); ok {
			rest = trimmed
			break
		}
	}
	// Pronoun check precedes determiner stripping so "that one" is caught
	// whole, while "that report" sheds the determiner below.
	if startsWithPronoun(rest) {
		return Params{}, refClarification(intent)
	}
	for _, filler := range []string{"the task", "task", "the todo", "todo", "the", "that", "this"} {
		if trimmed, ok := trimPrefixFold(rest, filler); ok {
			rest = trimmed
		}
	}
	rest = trimSuffixFold(rest, " as done")
	rest = trimSuffixFold(rest, " as complete")
	rest = trimSuffixFold(rest, " task")
	rest = strings.TrimSpace(rest)

	if rest == "" || rest == s || startsWithPronoun(rest) {
		return Params{}, refClarification(intent)
	}
	return Params{Ref: rest}, nil
}

func refClarification(intent Intent) *Clarification {
	verb := "complete"
	if intent == IntentDeleteTask {
		verb = "delete"
	}
	return &Clarification{
		Missing: "ref",
		Prompt:  "Which task would you like to " + verb + "? You can give me its number or title.",
	}
}

func extractUpdate(s string) (Params, *Clarification) {
	var p Params

	if m := taskNumberRe.FindStringSubmatch(s); m != nil {
		p.Ref = m[1]
	} else if m := anyQuotedRe.FindStringSubmatch(s); m != nil {
		p.Ref = strings.TrimSpace(m[1])
	}

	if m := updateDescRe.FindStringSubmatch(s); m != nil {
		p.NewDescription = strings.Trim(strings.TrimSpace(m[1]), `'"`)
	} else if m := updateToRe.FindStringSubmatch(s); m != nil {
		p.NewTitle = strings.Trim(strings.TrimSpace(m[1]), `'"`)
	}

	// "change buy milk to buy oat milk" carries the reference as the text
	// between the verb and "to".
	if p.Ref == "" {
		if m := updateRefRe.FindStringSubmatch(s); m != nil {
			p.Ref = strings.Trim(strings.TrimSpace(m[1]), `'"`)
		}
	}
	if startsWithPronoun(p.Ref) {
		// "change it to ..." with no antecedent: the normalizer left the
		// pronoun in place, so there is nothing to resolve against.
		p.Ref = ""
	}

	if p.Ref == "" {
		return p, &Clarification{
			Missing: "ref",
			Prompt:  "Which task would you like to update? You can give me its number or title.",
		}
	}
	if p.NewTitle == "" && p.NewDescription == "" {
		return p, &Clarification{
			Missing: "change",
			Prompt:  "What should the task say instead?",
		}
	}
	if len(p.NewTitle) > maxTitleLen {
		p.NewTitle = p.NewTitle[:maxTitleLen]
	}
	if len(p.NewDescription) > maxDescriptionLen {
		p.NewDescription = p.NewDescription[:maxDescriptionLen]
	}
	return p, nil
}

// extractStatus maps list-intent wording onto a store filter. Completed
// keywords are checked first so "show finished tasks" does not fall through
// to the pending synonyms.
func extractStatus(s string) string {
	if statusDoneRe.MatchString(s) {
		return string(ports.FilterCompleted)
	}
	if statusPendingRe.MatchString(s) {
		return string(ports.FilterPending)
	}
	return string(ports.FilterAll)
}

// trimPrefixFold strips a case-insensitive word prefix followed by a space.
func trimPrefixFold(s, prefix string) (string, bool) {
	if len(s) > len(prefix)+1 && strings.EqualFold(s[:len(prefix)], prefix) && s[len(prefix)] == ' ' {
		return strings.TrimSpace(s[len(prefix)+1:]), true
	}
	return s, false
}

// trimSuffixFold strips a case-insensitive suffix.
func trimSuffixFold(s, suffix string) string {
	if len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s[:len(s)-len(suffix)]
	}
	return s
}

// startsWithPronoun reports whether a candidate reference is, or begins
// with, one of the pronouns the normalizer substitutes. A pronoun that
// survived normalization had no antecedent, so treating it as a title
// would send a bogus lookup to the task store.
func startsWithPronoun(s string) bool {
	// Bare "that"/"this" only count when they are the whole reference;
	// as a prefix they are determiners ("delete that report").
	for _, p := range []string{"that", "this"} {
		if strings.EqualFold(s, p) {
			return true
		}
	}
	for _, p := range []string{"it", "that one", "that task", "this one", "this task"} {
		if strings.EqualFold(s, p) {
			return true
		}
		if len(s) > len(p) && strings.EqualFold(s[:len(p)], p) && s[len(p)] == ' ' {
			return true
		}
	}
	return false
}

// parseTaskID interprets a reference as a numeric task id. Only pure
// integers (optionally "#"-prefixed) qualify; anything else is a title
// reference.
func parseTaskID(ref string) (int64, bool) {
	ref = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ref), "#"))
	if ref == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// SplitClauses breaks a compound utterance ("add buy milk and then show my
// tasks") into at most max sequential clauses. Input that does not look
// compound comes back as a single clause.
func SplitClauses(normalized string, max int) []string {
	if max < 1 {
		max = 1
	}

	locs := clauseSplitRe.FindAllStringSubmatchIndex(normalized, -1)
	if len(locs) == 0 {
		return []string{normalized}
	}

	clauses := make([]string, 0, len(locs)+1)
	start := 0
	for _, loc := range locs {
		if len(clauses) == max-1 {
			break
		}
		clause := strings.TrimSpace(normalized[start:loc[0]])
		if clause != "" {
			clauses = append(clauses, clause)
		}
		// The connector is dropped but the verb that anchored the split is
		// kept as the head of the next clause.
		start = loc[2]
	}
	rest := strings.TrimSpace(normalized[start:])
	if rest != "" {
		clauses = append(clauses, rest)
	}
	if len(clauses) == 0 {
		return []string{normalized}
	}
	return clauses
}
