package agent

import "regexp"

// Intent is the closed set of operations a message can request.
type Intent string

const (
	IntentCreateTask   Intent = "create_task"
	IntentListTasks    Intent = "list_tasks"
	IntentCompleteTask Intent = "complete_task"
	IntentUpdateTask   Intent = "update_task"
	IntentDeleteTask   Intent = "delete_task"
	IntentGreeting     Intent = "greeting"
	IntentHelp         Intent = "help"
	IntentUnknown      Intent = "unknown"
)

// Tier grades how certain the classifier is. Low always yields
// IntentUnknown plus a clarification request; the classifier never guesses
// silently.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Classification is the classifier's verdict for one utterance.
type Classification struct {
	Intent Intent
	Tier   Tier
	Rule   string // matched pattern, for tracing
}

// Destructive reports whether the intent requires explicit confirmation
// before any tool is invoked.
func (i Intent) Destructive() bool {
	return i == IntentDeleteTask
}

type rule struct {
	re     *regexp.Regexp
	intent Intent
	tier   Tier
}

// Rules are evaluated in order and the first match wins. The order is a
// deliberate tie-break policy: explicit keyword+verb constructions come
// first, broader heuristics last, and overlapping keyword sets (complete
// before update before delete) resolve predictably.
var classifierRules = []rule{
	// create
	{regexp.MustCompile(`(?i)^(add|create|new)\s+.*(task|todo)`), IntentCreateTask, TierHigh},
	{regexp.MustCompile(`(?i)^(add|create)\s*:`), IntentCreateTask, TierHigh},
	{regexp.MustCompile(`(?i)^(task|todo)\s*:`), IntentCreateTask, TierHigh},
	{regexp.MustCompile(`(?i)^(remind me to|remind to|don'?t forget to|don'?t forget)\s+\w`), IntentCreateTask, TierHigh},
	{regexp.MustCompile(`(?i)^(make|set)\s+(a\s+)?(task|todo|reminder)`), IntentCreateTask, TierHigh},
	{regexp.MustCompile(`(?i)^(add|create)\s+\w`), IntentCreateTask, TierHigh},
	{regexp.MustCompile(`(?i)\bi\s+need\s+to\b`), IntentCreateTask, TierMedium},
	{regexp.MustCompile(`(?i)^new\s+\w`), IntentCreateTask, TierMedium},
	{regexp.MustCompile(`(?i)^(put|write)\s+.*(list|task|todo)`), IntentCreateTask, TierMedium},

	// list
	{regexp.MustCompile(`(?i)^(list|show|view|see|display)\s+.*(tasks|todos)`), IntentListTasks, TierHigh},
	{regexp.MustCompile(`(?i)^(what are|what'?s)\s+.*(tasks|todos)`), IntentListTasks, TierHigh},
	{regexp.MustCompile(`(?i)^(show|list)\s+(pending|completed)`), IntentListTasks, TierHigh},
	{regexp.MustCompile(`(?i)^(show|see|view|list)\s+(my\s+)?(tasks|todos?|list)`), IntentListTasks, TierHigh},
	{regexp.MustCompile(`(?i)^(pending|completed)\s+tasks`), IntentListTasks, TierHigh},
	{regexp.MustCompile(`(?i)^all\s+tasks`), IntentListTasks, TierHigh},
	{regexp.MustCompile(`(?i)^what.*tasks`), IntentListTasks, TierMedium},
	{regexp.MustCompile(`(?i)^(what do i have to do|what'?s left)`), IntentListTasks, TierMedium},
	{regexp.MustCompile(`(?i)^(my\s+)?(tasks|todos?)$`), IntentListTasks, TierMedium},
	{regexp.MustCompile(`(?i)^(show|list|view)\s*(me\s+)?(everything|all)`), IntentListTasks, TierMedium},
	{regexp.MustCompile(`(?i)^(list|show)$`), IntentListTasks, TierMedium},
	{regexp.MustCompile(`(?i)^what\s+(should|do)\s+i\s+(do|have)`), IntentListTasks, TierMedium},

	// complete
	{regexp.MustCompile(`(?i)^(mark|complete|finish)\s+.*(task|done|complete)`), IntentCompleteTask, TierHigh},
	{regexp.MustCompile(`(?i)^(mark|complete)\s+['"]`), IntentCompleteTask, TierHigh},
	{regexp.MustCompile(`(?i)^(complete|finish|done)\s+\d+`), IntentCompleteTask, TierHigh},
	{regexp.MustCompile(`(?i)^(mark|check)\s+\d+`), IntentCompleteTask, TierHigh},
	{regexp.MustCompile(`(?i)^task\s+\d+\s+(is\s+)?(done|complete|finished)`), IntentCompleteTask, TierHigh},
	{regexp.MustCompile(`(?i)^(check off|done with)`), IntentCompleteTask, TierHigh},
	{regexp.MustCompile(`(?i)^(done|finished|completed)\s+with`), IntentCompleteTask, TierMedium},
	{regexp.MustCompile(`(?i)^(i\s+)?(finished|completed|done)\s+\d+`), IntentCompleteTask, TierMedium},
	{regexp.MustCompile(`(?i)^\d+\s+(is\s+)?(done|complete|finished)`), IntentCompleteTask, TierMedium},
	{regexp.MustCompile(`(?i)^(i\s+)?(did|finished|completed)\s+.*task`), IntentCompleteTask, TierMedium},
	{regexp.MustCompile(`(?i)^(complete|finish)\s+\w`), IntentCompleteTask, TierMedium},

	// update
	{regexp.MustCompile(`(?i)^(update|change|edit|modify)\s+task`), IntentUpdateTask, TierHigh},
	{regexp.MustCompile(`(?i)^(update|change|edit)\s*:`), IntentUpdateTask, TierHigh},
	{regexp.MustCompile(`(?i)^(rename|update)\s+task\s+.*\s+to\s+`), IntentUpdateTask, TierHigh},
	{regexp.MustCompile(`(?i)^(update|change|edit|modify)\s+\d+`), IntentUpdateTask, TierHigh},
	{regexp.MustCompile(`(?i)^(rename|change)\s+.+\s+to\s+`), IntentUpdateTask, TierMedium},

	// delete
	{regexp.MustCompile(`(?i)^(delete|remove|get rid of)\s+.*task`), IntentDeleteTask, TierHigh},
	{regexp.MustCompile(`(?i)^(delete|remove)\s+['"]`), IntentDeleteTask, TierHigh},
	{regexp.MustCompile(`(?i)^(delete|remove)\s*:`), IntentDeleteTask, TierHigh},
	{regexp.MustCompile(`(?i)^(delete|remove)\s+\d+`), IntentDeleteTask, TierHigh},
	{regexp.MustCompile(`(?i)^discard\s+task`), IntentDeleteTask, TierMedium},
	{regexp.MustCompile(`(?i)^(cancel|clear)\s+(task\s+)?\d+`), IntentDeleteTask, TierMedium},
	{regexp.MustCompile(`(?i)^(delete|remove)\s+\w`), IntentDeleteTask, TierMedium},

	// greeting
	{regexp.MustCompile(`(?i)^(hi|hello|hey|hiya|howdy)$`), IntentGreeting, TierHigh},
	{regexp.MustCompile(`(?i)^(hi|hello|hey)\s+(there|taskie|bot|assistant)`), IntentGreeting, TierHigh},
	{regexp.MustCompile(`(?i)^good\s+(morning|afternoon|evening|day)`), IntentGreeting, TierHigh},
	{regexp.MustCompile(`(?i)^(what'?s up|sup|yo)$`), IntentGreeting, TierMedium},
	{regexp.MustCompile(`(?i)^(greetings|salutations)`), IntentGreeting, TierMedium},

	// help
	{regexp.MustCompile(`(?i)^(help|help me)$`), IntentHelp, TierHigh},
	{regexp.MustCompile(`(?i)^what can you do`), IntentHelp, TierHigh},
	{regexp.MustCompile(`(?i)^how\s+(do i|does this|can i)`), IntentHelp, TierMedium},
	{regexp.MustCompile(`(?i)^(what|who)\s+are\s+you`), IntentHelp, TierMedium},
	{regexp.MustCompile(`(?i)^(commands|options|features)`), IntentHelp, TierMedium},
}

// Classify maps a normalized utterance to an intent and confidence tier by
// evaluating the rule table in order.
func Classify(normalized string) Classification {
	if normalized == "" {
		return Classification{Intent: IntentUnknown, Tier: TierLow}
	}

	for _, r := range classifierRules {
		if r.re.MatchString(normalized) {
			return Classification{Intent: r.intent, Tier: r.tier, Rule: r.re.String()}
		}
	}

	return Classification{Intent: IntentUnknown, Tier: TierLow}
}
