package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// Envelope is one inbound user message.
type Envelope struct {
	ConversationID string    `json:"conversation_id"`
	Owner          string    `json:"owner"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}

// Reply is the agent's answer to one envelope. Trace carries the tool calls
// performed while producing it; Pending names the state kind the
// conversation was left in, if any.
type Reply struct {
	ConversationID string                 `json:"conversation_id"`
	Text           string                 `json:"text"`
	Intent         string                 `json:"intent"`
	Trace          []ports.ToolInvocation `json:"trace,omitempty"`
	Pending        string                 `json:"pending,omitempty"`
	TurnCount      int                    `json:"turn_count"`
}

// Options are the pipeline tuning knobs, bound from configuration.
type Options struct {
	LookbackTurns      int
	MaxCandidates      int
	MaxWorkflowSteps   int
	ConfirmDestructive bool
}

// Agent is the conversation pipeline. It holds no per-conversation state;
// everything it needs between requests lives in the conversation store, so
// any instance can serve any turn.
type Agent struct {
	normalizer *Normalizer
	resolver   *Resolver
	orch       *Orchestrator
	tasks      ports.TaskStore
	convs      ports.ConversationStore
	tracer     ports.Tracer
	limiter    ports.Limiter
	logger     zerolog.Logger
	opts       Options
}

// NewAgent wires a pipeline from its collaborators.
func NewAgent(
	tasks ports.TaskStore,
	convs ports.ConversationStore,
	orch *Orchestrator,
	tracer ports.Tracer,
	limiter ports.Limiter,
	logger zerolog.Logger,
	opts Options,
) *Agent {
	if opts.LookbackTurns < 1 {
		opts.LookbackTurns = 10
	}
	if opts.MaxCandidates < 1 {
		opts.MaxCandidates = 5
	}
	if opts.MaxWorkflowSteps < 1 {
		opts.MaxWorkflowSteps = 2
	}
	return &Agent{
		normalizer: NewNormalizer(opts.LookbackTurns),
		resolver:   NewResolver(tasks, opts.MaxCandidates),
		orch:       orch,
		tasks:      tasks,
		convs:      convs,
		tracer:     tracer,
		limiter:    limiter,
		logger:     logger,
		opts:       opts,
	}
}

// outcome is the internal result of interpreting one utterance or clause.
type outcome struct {
	text        string
	intent      Intent
	params      Params
	invocations []ports.ToolInvocation
	pending     *ports.PendingState
	halted      bool
}

// HandleMessage runs the full pipeline for one envelope. It never returns a
// user-facing error for interpretation problems; those become composed
// replies. The returned error is reserved for faults that prevented the
// turn from being processed at all.
func (a *Agent) HandleMessage(ctx context.Context, env Envelope) (Reply, error) {
	if env.ConversationID == "" || env.Owner == "" {
		return Reply{}, fmt.Errorf("handle message: conversation id and owner are required: %w", ErrValidation)
	}

	ctx, end := a.tracer.StartSpan(ctx, "agent.handle_message", map[string]any{
		"conversation_id": env.ConversationID,
	})
	var spanErr error
	defer func() { end(spanErr) }()

	release, err := a.limiter.Acquire(ctx, env.ConversationID)
	if err != nil {
		return Reply{ConversationID: env.ConversationID, Text: composeBusy()}, nil
	}
	defer release()

	if err := a.convs.EnsureConversation(ctx, env.ConversationID, env.Owner); err != nil {
		spanErr = err
		a.logger.Error().Err(err).Str("conversation_id", env.ConversationID).Msg("ensure conversation failed")
		return Reply{ConversationID: env.ConversationID, Text: composeTrouble()}, nil
	}

	prior, err := a.convs.LoadRecent(ctx, env.ConversationID, a.opts.LookbackTurns)
	if err != nil {
		spanErr = err
		a.logger.Error().Err(err).Str("conversation_id", env.ConversationID).Msg("load history failed")
		return Reply{ConversationID: env.ConversationID, Text: composeTrouble()}, nil
	}
	nextSeq := 1
	if len(prior) > 0 {
		nextSeq = prior[len(prior)-1].Seq + 1
	}

	pending, err := a.convs.GetPending(ctx, env.ConversationID)
	if err != nil {
		spanErr = err
		a.logger.Error().Err(err).Str("conversation_id", env.ConversationID).Msg("load pending state failed")
		return Reply{ConversationID: env.ConversationID, Text: composeTrouble()}, nil
	}

	out := a.interpret(ctx, env, prior, pending)

	// Persist the exchange. History write failures are logged but do not
	// retract a reply whose effects already happened.
	userTurn := ports.Turn{
		Seq:       nextSeq,
		Role:      "user",
		Content:   env.Text,
		CreatedAt: env.Timestamp,
	}
	if userTurn.CreatedAt.IsZero() {
		userTurn.CreatedAt = time.Now().UTC()
	}
	if err := a.convs.AppendTurn(ctx, env.ConversationID, userTurn); err != nil {
		a.logger.Error().Err(err).Str("conversation_id", env.ConversationID).Msg("append user turn failed")
	}

	paramsJSON, _ := json.Marshal(out.params)
	if out.params == (Params{}) {
		paramsJSON = nil
	}
	assistantTurn := ports.Turn{
		Seq:         nextSeq + 1,
		Role:        "assistant",
		Content:     out.text,
		Intent:      string(out.intent),
		Params:      paramsJSON,
		Invocations: out.invocations,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.convs.AppendTurn(ctx, env.ConversationID, assistantTurn); err != nil {
		a.logger.Error().Err(err).Str("conversation_id", env.ConversationID).Msg("append assistant turn failed")
	}

	reply := Reply{
		ConversationID: env.ConversationID,
		Text:           out.text,
		Intent:         string(out.intent),
		Trace:          out.invocations,
		TurnCount:      nextSeq + 1,
	}
	if out.pending != nil {
		reply.Pending = out.pending.Kind
	}
	return reply, nil
}

// interpret decides what this message means given any pending state, and
// executes whatever it resolves to.
func (a *Agent) interpret(ctx context.Context, env Envelope, prior []ports.Turn, pending *ports.PendingState) outcome {
	if pending != nil {
		if out, handled := a.resumePending(ctx, env, pending); handled {
			return out
		}
		// The reply did not address the pending state. Discard it: a stale
		// confirmation must never be satisfied by an unrelated later "yes".
		if err := a.convs.ClearPending(ctx, env.ConversationID); err != nil {
			a.logger.Error().Err(err).Str("conversation_id", env.ConversationID).Msg("clear pending state failed")
			return outcome{text: composeTrouble(), intent: IntentUnknown}
		}
	}

	normalized := a.normalizer.Normalize(env.Text, prior)
	clauses := SplitClauses(normalized, a.opts.MaxWorkflowSteps)

	if len(clauses) > 1 {
		if out, ok := a.runCompound(ctx, env, clauses); ok {
			return out
		}
		// Not a safe compound; interpret the message whole.
	}
	return a.runClause(ctx, env, normalized)
}

// resumePending applies a reply to existing pending state. The second
// return is false when the reply is unrelated and should be treated as a
// fresh utterance.
func (a *Agent) resumePending(ctx context.Context, env Envelope, pending *ports.PendingState) (outcome, bool) {
	// No pronoun resolution here: "do it" is an answer, not a reference.
	normalized := a.normalizer.NormalizeText(env.Text)

	switch pending.Kind {
	case ports.PendingConfirmationKind:
		if pending.Confirmation == nil {
			return outcome{}, false
		}
		switch {
		case IsAffirmative(normalized):
			if !a.clearPending(ctx, env.ConversationID) {
				return outcome{text: composeTrouble(), intent: Intent(pending.Confirmation.Intent)}, true
			}
			return a.executeConfirmed(ctx, *pending.Confirmation), true
		case IsNegative(normalized):
			if !a.clearPending(ctx, env.ConversationID) {
				return outcome{text: composeTrouble(), intent: Intent(pending.Confirmation.Intent)}, true
			}
			return outcome{text: composeCancelled(), intent: Intent(pending.Confirmation.Intent)}, true
		default:
			return outcome{}, false
		}

	case ports.PendingCandidatesKind:
		if pending.Candidates == nil {
			return outcome{}, false
		}
		if IsNegative(normalized) {
			if !a.clearPending(ctx, env.ConversationID) {
				return outcome{text: composeTrouble(), intent: Intent(pending.Candidates.Intent)}, true
			}
			return outcome{text: composeCancelled(), intent: Intent(pending.Candidates.Intent)}, true
		}
		chosen, ok := SelectCandidate(normalized, pending.Candidates.Candidates)
		if !ok {
			return outcome{}, false
		}
		if !a.clearPending(ctx, env.ConversationID) {
			return outcome{text: composeTrouble(), intent: Intent(pending.Candidates.Intent)}, true
		}
		return a.resumeWithTask(ctx, env, *pending.Candidates, chosen), true
	}
	return outcome{}, false
}

func (a *Agent) clearPending(ctx context.Context, conversationID string) bool {
	if err := a.convs.ClearPending(ctx, conversationID); err != nil {
		a.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("clear pending state failed")
		return false
	}
	return true
}

// executeConfirmed runs the tool call that was parked behind a
// confirmation gate.
func (a *Agent) executeConfirmed(ctx context.Context, conf ports.PendingConfirmation) outcome {
	intent := Intent(conf.Intent)
	results := a.orch.Execute(ctx, []Step{{Intent: intent, Tool: conf.ToolName, Input: conf.ToolInput}})
	invs := Invocations(results)

	last := results[len(results)-1]
	if last.Err != nil {
		return outcome{text: a.composeStepError(last.Err, conf.Description), intent: intent, invocations: invs}
	}
	if intent == IntentDeleteTask {
		return outcome{text: composeDeleted(conf.Description), intent: intent, invocations: invs}
	}
	return outcome{text: composeTrouble(), intent: intent, invocations: invs}
}

// resumeWithTask re-runs the original intent now that the ambiguous
// reference has been pinned to one task.
func (a *Agent) resumeWithTask(ctx context.Context, env Envelope, pc ports.PendingCandidates, chosen ports.Candidate) outcome {
	var params Params
	if len(pc.Params) > 0 {
		_ = json.Unmarshal(pc.Params, &params)
	}
	params.Ref = strconv.FormatInt(chosen.TaskID, 10)

	return a.act(ctx, env, Intent(pc.Intent), params)
}

// runCompound executes a multi-clause message. Only create and list clauses
// may be chained; anything needing resolution or confirmation forces
// single-utterance handling. The second return is false when the split is
// rejected.
func (a *Agent) runCompound(ctx context.Context, env Envelope, clauses []string) (outcome, bool) {
	type planned struct {
		clause string
		intent Intent
		params Params
	}
	plan := make([]planned, 0, len(clauses))
	for _, clause := range clauses {
		c := Classify(clause)
		if c.Intent != IntentCreateTask && c.Intent != IntentListTasks {
			return outcome{}, false
		}
		if c.Tier == TierLow {
			return outcome{}, false
		}
		params, clar := Extract(c.Intent, clause)
		if clar != nil {
			return outcome{}, false
		}
		plan = append(plan, planned{clause: clause, intent: c.Intent, params: params})
	}

	var (
		parts  []string
		invs   []ports.ToolInvocation
		halted bool
	)
	for _, p := range plan {
		out := a.act(ctx, env, p.intent, p.params)
		parts = append(parts, out.text)
		invs = append(invs, out.invocations...)
		if out.halted {
			halted = true
			break
		}
	}
	return outcome{
		text:        composeMulti(parts, halted),
		intent:      plan[0].intent,
		params:      plan[0].params,
		invocations: invs,
	}, true
}

// runClause interprets a single normalized utterance end to end.
func (a *Agent) runClause(ctx context.Context, env Envelope, normalized string) outcome {
	c := Classify(normalized)
	a.tracer.Event(ctx, "classified", map[string]any{
		"intent": string(c.Intent),
		"tier":   string(c.Tier),
	})

	switch c.Intent {
	case IntentGreeting:
		return outcome{text: composeGreeting(), intent: c.Intent}
	case IntentHelp:
		return outcome{text: composeHelp(), intent: c.Intent}
	case IntentUnknown:
		return outcome{text: composeUnknown(), intent: c.Intent}
	}

	params, clar := Extract(c.Intent, normalized)
	if clar != nil {
		return outcome{text: composeClarification(clar), intent: c.Intent, params: params}
	}
	return a.act(ctx, env, c.Intent, params)
}

// act resolves references, applies the confirmation gate and executes the
// resulting tool call for one already-extracted intent.
func (a *Agent) act(ctx context.Context, env Envelope, intent Intent, params Params) outcome {
	out := outcome{intent: intent, params: params}

	switch intent {
	case IntentCreateTask:
		input := mustJSON(map[string]any{
			"owner":       env.Owner,
			"title":       params.Title,
			"description": params.Description,
		})
		results := a.orch.Execute(ctx, []Step{{Intent: intent, Tool: "add_task", Input: input}})
		out.invocations = Invocations(results)
		last := results[len(results)-1]
		if last.Err != nil {
			out.text = a.composeStepError(last.Err, params.Title)
			out.halted = true
			return out
		}
		var task ports.Task
		_ = json.Unmarshal(last.Output, &task)
		out.text = composeCreated(task)
		return out

	case IntentListTasks:
		filter := ports.StatusFilter(params.Status)
		if filter == "" {
			filter = ports.FilterAll
		}
		input := mustJSON(map[string]any{
			"owner":  env.Owner,
			"status": string(filter),
		})
		results := a.orch.Execute(ctx, []Step{{Intent: intent, Tool: "list_tasks", Input: input}})
		out.invocations = Invocations(results)
		last := results[len(results)-1]
		if last.Err != nil {
			out.text = a.composeStepError(last.Err, "")
			out.halted = true
			return out
		}
		var res struct {
			Tasks []ports.Task `json:"tasks"`
		}
		_ = json.Unmarshal(last.Output, &res)
		out.text = composeList(res.Tasks, filter)
		return out

	case IntentCompleteTask, IntentUpdateTask, IntentDeleteTask:
		task, candidates, err := a.resolver.Resolve(ctx, env.Owner, params.Ref)
		if err != nil {
			switch {
			case errors.Is(err, ErrAmbiguousReference):
				pcParams, _ := json.Marshal(params)
				state := ports.PendingState{
					Kind: ports.PendingCandidatesKind,
					Candidates: &ports.PendingCandidates{
						Intent:     string(intent),
						Params:     pcParams,
						Candidates: candidates,
					},
				}
				if serr := a.convs.SetPending(ctx, env.ConversationID, state); serr != nil {
					a.logger.Error().Err(serr).Str("conversation_id", env.ConversationID).Msg("set pending state failed")
					out.text = composeTrouble()
					return out
				}
				out.text = composeAmbiguous(candidates)
				out.pending = &state
				return out
			case errors.Is(err, ErrNotFound):
				out.text = composeNotFound(params.Ref)
				out.halted = true
				return out
			default:
				a.logger.Error().Err(err).Str("conversation_id", env.ConversationID).Msg("reference resolution failed")
				out.text = composeTrouble()
				out.halted = true
				return out
			}
		}
		return a.actOnTask(ctx, env, intent, params, task)
	}

	out.text = composeUnknown()
	return out
}

// actOnTask executes an intent whose target task is already resolved.
func (a *Agent) actOnTask(ctx context.Context, env Envelope, intent Intent, params Params, task ports.Task) outcome {
	out := outcome{intent: intent, params: params}

	switch intent {
	case IntentCompleteTask:
		input := mustJSON(map[string]any{"owner": env.Owner, "task_id": task.ID})
		results := a.orch.Execute(ctx, []Step{{Intent: intent, Tool: "complete_task", Input: input}})
		out.invocations = Invocations(results)
		last := results[len(results)-1]
		if last.Err != nil {
			out.text = a.composeStepError(last.Err, task.Title)
			out.halted = true
			return out
		}
		var updated ports.Task
		_ = json.Unmarshal(last.Output, &updated)
		out.text = composeCompleted(updated)
		return out

	case IntentUpdateTask:
		fields := map[string]any{"owner": env.Owner, "task_id": task.ID}
		changedField, changedValue := "", ""
		if params.NewTitle != "" {
			fields["title"] = params.NewTitle
			changedField, changedValue = "title", params.NewTitle
		}
		if params.NewDescription != "" {
			fields["description"] = params.NewDescription
			if changedField == "" {
				changedField, changedValue = "description", params.NewDescription
			}
		}
		results := a.orch.Execute(ctx, []Step{{Intent: intent, Tool: "update_task", Input: mustJSON(fields)}})
		out.invocations = Invocations(results)
		last := results[len(results)-1]
		if last.Err != nil {
			out.text = a.composeStepError(last.Err, task.Title)
			out.halted = true
			return out
		}
		out.text = composeUpdated(changedField, changedValue)
		return out

	case IntentDeleteTask:
		input := mustJSON(map[string]any{"owner": env.Owner, "task_id": task.ID})
		if !a.opts.ConfirmDestructive {
			results := a.orch.Execute(ctx, []Step{{Intent: intent, Tool: "delete_task", Input: input}})
			out.invocations = Invocations(results)
			last := results[len(results)-1]
			if last.Err != nil {
				out.text = a.composeStepError(last.Err, task.Title)
				out.halted = true
				return out
			}
			out.text = composeDeleted(task.Title)
			return out
		}

		state := ports.PendingState{
			Kind: ports.PendingConfirmationKind,
			Confirmation: &ports.PendingConfirmation{
				Intent:      string(intent),
				ToolName:    "delete_task",
				ToolInput:   input,
				Description: task.Title,
			},
		}
		if err := a.convs.SetPending(ctx, env.ConversationID, state); err != nil {
			a.logger.Error().Err(err).Str("conversation_id", env.ConversationID).Msg("set pending state failed")
			out.text = composeTrouble()
			return out
		}
		out.text = composeConfirmDelete(task.Title)
		out.pending = &state
		return out
	}

	out.text = composeUnknown()
	return out
}

// composeStepError maps a tool failure onto a user-facing message.
func (a *Agent) composeStepError(err error, subject string) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return composeNotFound(subject)
	case errors.Is(err, ErrValidation):
		return "That doesn't look quite right. " + composeUnknown()
	default:
		a.logger.Error().Err(err).Msg("tool invocation failed")
		return composeTrouble()
	}
}

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("encode tool input: %v", err))
	}
	return raw
}
