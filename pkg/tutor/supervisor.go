package tutor

import (
	"context"
	"encoding/json"

	"ai-reading-tutor-be/pkg/llm"
	"ai-reading-tutor-be/pkg/stream"
)

// supervisorNode decides the next pedagogical step and synthesizes the
// turn's retrieval policy. qa and copilot use fixed shortcuts; tutor
// mode asks the model and sanitizes whatever comes back.
func (w *Workflow) supervisorNode(ctx context.Context, st *State) (Update, error) {
	var upd Update

	switch st.Mode {
	case ModeQA:
		policy := FastPolicy(len(st.Messages) > 0)
		upd = Update{
			NextStep:  stepPtr(StepAnswer),
			Policy:    &policy,
			Reasoning: strPtr("qa mode answers directly from the corpus"),
		}

	case ModeCopilot:
		// Prefer answering from what the user already has on screen
		var policy RetrievalPolicy
		if !st.Reader.Empty() && !w.hasFilter(st) {
			policy = DisabledPolicy("inline reader context covers the question")
		} else {
			policy = FastPolicy(len(st.Messages) > 0)
		}
		upd = Update{
			NextStep:  stepPtr(StepExplain),
			Policy:    &policy,
			Reasoning: strPtr("copilot mode explains in place"),
		}

	default: // ModeTutor
		upd = w.superviseTutor(ctx, st)
	}

	stream.Emit(ctx, stream.EventMeta, map[string]interface{}{
		"traceId":   stream.TraceID(ctx),
		"mode":      st.Mode,
		"nextStep":  *upd.NextStep,
		"reasoning": deref(upd.Reasoning),
		"policy":    *upd.Policy,
	})
	return upd, nil
}

func (w *Workflow) superviseTutor(ctx context.Context, st *State) Update {
	fallback := w.tutorDefaultPolicy(st, StepExplain)

	raw, err := w.llm.ChatStructured(ctx, []llm.Message{
		{Role: "user", Content: buildSupervisorPrompt(st)},
	}, supervisorSchema, llm.WithTemperature(0.2))
	if err != nil {
		w.logger.Printf("[WARN] Supervisor LLM call failed, using defaults: %v", err)
		return Update{
			NextStep:  stepPtr(StepExplain),
			Policy:    &fallback,
			Reasoning: strPtr("supervisor unavailable, defaulting to explain"),
		}
	}

	var decision supervisorDecision
	extracted, ok := ExtractJSON(raw)
	if !ok {
		w.logger.Printf("[WARN] Supervisor output not parseable, using defaults")
		return Update{
			NextStep:  stepPtr(StepExplain),
			Policy:    &fallback,
			Reasoning: strPtr("supervisor output unparseable, defaulting to explain"),
		}
	}
	if err := json.Unmarshal([]byte(extracted), &decision); err != nil {
		w.logger.Printf("[WARN] Supervisor output not decodable, using defaults: %v", err)
		return Update{
			NextStep:  stepPtr(StepExplain),
			Policy:    &fallback,
			Reasoning: strPtr("supervisor output undecodable, defaulting to explain"),
		}
	}

	next := stepForIntent(decision.NextStep)
	defaults := w.tutorDefaultPolicy(st, next)
	policy := sanitizeAgainst(decision.RetrievalPolicy, defaults)

	upd := Update{
		NextStep:  stepPtr(next),
		Policy:    &policy,
		Reasoning: strPtr(decision.Reasoning),
	}
	if decision.Topic != "" {
		upd.CurrentTopic = strPtr(decision.Topic)
	}
	if decision.UIHint != "" {
		upd.UIHint = strPtr(decision.UIHint)
	}
	return upd
}

// tutorDefaultPolicy is the computed default the model's proposal is
// sanitized against: retrieval on unless inline context covers the
// question, comprehensive with a higher topK for plan turns.
func (w *Workflow) tutorDefaultPolicy(st *State, next Step) RetrievalPolicy {
	if !st.Reader.Empty() && !w.hasFilter(st) {
		return DisabledPolicy("inline reader context covers the question")
	}
	policy := FastPolicy(len(st.Messages) > 0)
	if next == StepPlan {
		policy.Mode = RetrievalComprehensive
		policy.TopK = 8
	}
	return policy
}

// sanitizeAgainst clamps the model's policy and fills zero-valued
// fields from the computed default.
func sanitizeAgainst(proposed, defaults RetrievalPolicy) RetrievalPolicy {
	if proposed.TopK == 0 {
		proposed.TopK = defaults.TopK
	}
	if proposed.MinSimilarity == 0 {
		proposed.MinSimilarity = defaults.MinSimilarity
	}
	if proposed.Mode == "" {
		proposed.Mode = defaults.Mode
	}
	if proposed.Confidence == 0 {
		proposed.Confidence = defaults.Confidence
	}
	if proposed.Reason == "" {
		proposed.Reason = defaults.Reason
	}
	return proposed.Sanitized()
}

func stepForIntent(intent string) Step {
	switch intent {
	case "quiz":
		return StepQuiz
	case "code":
		return StepCode
	case "plan":
		return StepPlan
	case "end":
		return StepEnd
	default:
		return StepExplain
	}
}

func (w *Workflow) hasFilter(st *State) bool {
	return len(st.ArticleIds) > 0 || st.CollectionId != nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
