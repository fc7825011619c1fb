package tutor

import (
	"context"
	"strings"

	"ai-reading-tutor-be/pkg/llm"
)

// rewriteNode turns a follow-up utterance into a context-free query
// using recent turns. Rewriting is a quality optimization, never a
// hard dependency: any failure falls back to the original message.
func (w *Workflow) rewriteNode(ctx context.Context, st *State) (Update, error) {
	if st.Policy == nil || !st.Policy.RewriteQuery || len(st.Messages) == 0 {
		return Update{Query: strPtr(st.UserMessage)}, nil
	}

	rewritten, err := w.llm.Generate(ctx, buildRewritePrompt(st),
		llm.WithTemperature(0.1), llm.WithMaxTokens(200))
	if err != nil {
		w.logger.Printf("[WARN] Query rewrite failed, keeping original: %v", err)
		return Update{Query: strPtr(st.UserMessage)}, nil
	}

	rewritten = strings.TrimSpace(strings.Trim(strings.TrimSpace(rewritten), `"`))
	if rewritten == "" {
		return Update{Query: strPtr(st.UserMessage)}, nil
	}

	w.logger.Printf("[DEBUG] Query rewritten: %q -> %q",
		truncateText(st.UserMessage, 60), truncateText(rewritten, 60))
	return Update{Query: strPtr(rewritten)}, nil
}
