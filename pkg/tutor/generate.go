package tutor

import (
	"context"

	"ai-reading-tutor-be/pkg/genui"
	"ai-reading-tutor-be/pkg/llm"
	"ai-reading-tutor-be/pkg/stream"
)

// Text-bearing intents stream tokens live; structured intents wait for
// the full response and parse it.

func (w *Workflow) explainNode(ctx context.Context, st *State) (Update, error) {
	return w.generateText(ctx, st, StepExplain)
}

func (w *Workflow) answerNode(ctx context.Context, st *State) (Update, error) {
	return w.generateText(ctx, st, StepAnswer)
}

func (w *Workflow) quizNode(ctx context.Context, st *State) (Update, error) {
	return w.generateStructured(ctx, st, StepQuiz, genui.KindQuiz)
}

func (w *Workflow) codeNode(ctx context.Context, st *State) (Update, error) {
	return w.generateStructured(ctx, st, StepCode, genui.KindCodeExercise)
}

func (w *Workflow) planNode(ctx context.Context, st *State) (Update, error) {
	return w.generateStructured(ctx, st, StepPlan, genui.KindSummary)
}

// generateText runs a streaming completion, forwarding each token as a
// delta event, then parses the full text at completion. If the model
// volunteered a valid payload anyway, use it; otherwise the text is
// the explanation.
func (w *Workflow) generateText(ctx context.Context, st *State, intent Step) (Update, error) {
	history := w.buildHistory(st, intent)

	full, err := w.llm.ChatStream(ctx, history, func(token string) {
		stream.Emit(ctx, stream.EventDelta, map[string]string{"text": token})
	})
	if err != nil {
		w.logger.Printf("[ERROR] Generation failed (%s): %v", intent, err)
		return w.finalize(st, intent, genui.Fallback(FallbackMessage)), nil
	}

	payload := genui.Fallback(full)
	if extracted, ok := ExtractJSON(full); ok {
		if parsed, perr := genui.Decode([]byte(extracted)); perr == nil {
			payload = parsed
		}
	}
	if payload.Type == genui.KindExplanation && payload.Markdown == "" {
		payload = genui.Fallback(FallbackMessage)
	}

	return w.finalize(st, intent, payload), nil
}

// generateStructured runs a completion that must yield exactly one
// JSON object of the expected payload kind. Parsing is multi-strategy;
// both parse and validation failures collapse to the fallback payload,
// never to an error.
func (w *Workflow) generateStructured(ctx context.Context, st *State, intent Step, want genui.Kind) (Update, error) {
	history := w.buildHistory(st, intent)

	raw, err := w.llm.Chat(ctx, history, llm.WithTemperature(0.4))
	if err != nil {
		w.logger.Printf("[ERROR] Generation failed (%s): %v", intent, err)
		return w.finalize(st, intent, genui.Fallback(FallbackMessage)), nil
	}

	extracted, ok := ExtractJSON(raw)
	if !ok {
		w.logger.Printf("[WARN] No JSON found in %s output, falling back", intent)
		return w.finalize(st, intent, genui.Fallback(FallbackMessage)), nil
	}

	payload, perr := genui.Decode([]byte(extracted))
	if perr != nil {
		w.logger.Printf("[WARN] Invalid %s payload, falling back: %v", intent, perr)
		return w.finalize(st, intent, genui.Fallback(FallbackMessage)), nil
	}
	if payload.Type != want {
		w.logger.Printf("[WARN] Expected %s payload, got %s; keeping it since it validated", want, payload.Type)
	}

	return w.finalize(st, intent, payload), nil
}

func (w *Workflow) buildHistory(st *State, intent Step) []llm.Message {
	history := make([]llm.Message, 0, len(st.Messages)+2)
	history = append(history, llm.Message{Role: "system", Content: buildSystemPrompt(intent, st)})
	for _, m := range lastTurns(st.Messages, 10) {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}
	history = append(history, llm.Message{Role: "user", Content: st.UserMessage})
	return history
}

func (w *Workflow) finalize(st *State, intent Step, payload *genui.Payload) Update {
	final := &Final{
		UI:               payload,
		Sources:          st.Sources,
		SuggestedActions: suggestionsFor(intent, payload),
	}
	return Update{Final: final}
}

// suggestionsFor picks confidence-graded follow-up actions per intent.
func suggestionsFor(intent Step, payload *genui.Payload) []SuggestedAction {
	if payload != nil && payload.Type == genui.KindExplanation && payload.Markdown == FallbackMessage {
		return []SuggestedAction{
			{Label: "Try again", Prompt: "Could you try answering that again?", Confidence: 0.9},
		}
	}
	switch intent {
	case StepQuiz:
		return []SuggestedAction{
			{Label: "Give me a hint", Prompt: "Give me a hint for the first question", Confidence: 0.9},
			{Label: "Explain the answer", Prompt: "Explain the answer to the first question", Confidence: 0.8},
		}
	case StepCode:
		return []SuggestedAction{
			{Label: "Show the solution", Prompt: "Show me the solution with an explanation", Confidence: 0.8},
			{Label: "Make it easier", Prompt: "Can you give me a simpler exercise first?", Confidence: 0.6},
		}
	case StepPlan:
		return []SuggestedAction{
			{Label: "Quiz me on the overview", Prompt: "Quiz me on this overview", Confidence: 0.8},
			{Label: "Start with the first item", Prompt: "Let's start with the first item in the plan", Confidence: 0.7},
		}
	case StepAnswer:
		return []SuggestedAction{
			{Label: "Go deeper", Prompt: "Can you go deeper on that?", Confidence: 0.7},
			{Label: "Show related passages", Prompt: "What else in my library relates to this?", Confidence: 0.6},
		}
	default: // explain
		return []SuggestedAction{
			{Label: "Quiz me", Prompt: "Quiz me on what you just explained", Confidence: 0.8},
			{Label: "Simplify it", Prompt: "Can you explain that more simply?", Confidence: 0.7},
		}
	}
}
