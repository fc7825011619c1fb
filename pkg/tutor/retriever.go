package tutor

import (
	"context"
	"fmt"
	"strings"

	"ai-reading-tutor-be/pkg/retrieval"
	"ai-reading-tutor-be/pkg/stream"
)

// retrieverNode executes the turn's retrieval policy and assembles the
// citation-indexed context block. Upstream failures degrade to empty
// retrieval; they never abort the turn.
func (w *Workflow) retrieverNode(ctx context.Context, st *State) (Update, error) {
	policy := RetrievalPolicy{}
	if st.Policy != nil {
		policy = st.Policy.Sanitized()
	}

	filter := retrieval.Filter{
		ArticleIds:   st.ArticleIds,
		CollectionId: st.CollectionId,
	}

	// Plan retrieval: per-document summaries instead of chunks, a
	// compact table of contents for the plan node
	if st.NextStep == StepPlan && !filter.Empty() {
		sources, err := w.retriever.Summaries(ctx, st.UserId, filter)
		if err != nil {
			w.logger.Printf("[WARN] Summary retrieval failed, degrading to empty: %v", err)
			return emptyRetrieval(), nil
		}
		w.emitSources(ctx, sources, policy)
		return Update{
			Documents:  strPtr(formatSources(sources)),
			Sources:    sources,
			SetSources: true,
		}, nil
	}

	query := st.Query
	if query == "" {
		query = st.UserMessage
	}

	result, err := w.retriever.Search(ctx, retrieval.SearchRequest{
		Query:  query,
		UserId: st.UserId,
		Filter: filter,
		Mode:   string(policy.Mode),
		TopK:   policy.TopK,
	})
	if err != nil {
		w.logger.Printf("[WARN] Retrieval failed, degrading to empty: %v", err)
		return emptyRetrieval(), nil
	}

	filtered := make([]retrieval.Source, 0, len(result.Sources))
	for _, src := range result.Sources {
		if src.Similarity >= policy.MinSimilarity {
			filtered = append(filtered, src)
		}
	}

	// Below the floor means insufficient grounding, not an error: the
	// generation node must say the corpus lacks material
	if len(filtered) < policy.MinSources {
		w.logger.Printf("[DEBUG] Insufficient grounding: %d sources, need %d",
			len(filtered), policy.MinSources)
		w.emitSources(ctx, nil, policy)
		return emptyRetrieval(), nil
	}

	w.emitSources(ctx, filtered, policy)
	return Update{
		Documents:  strPtr(formatSources(filtered)),
		Sources:    filtered,
		SetSources: true,
	}, nil
}

func emptyRetrieval() Update {
	return Update{
		Documents:  strPtr(""),
		Sources:    []retrieval.Source{},
		SetSources: true,
	}
}

func (w *Workflow) emitSources(ctx context.Context, sources []retrieval.Source, policy RetrievalPolicy) {
	stream.Emit(ctx, stream.EventSources, map[string]interface{}{
		"sources":       sources,
		"minSimilarity": policy.MinSimilarity,
		"minSources":    policy.MinSources,
		"topK":          policy.TopK,
	})
}

// formatSources renders the citation-indexed context block generation
// prompts embed.
func formatSources(sources []retrieval.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	for i, src := range sources {
		fmt.Fprintf(&b, "【Source %d】%s\n%s\n\n", i+1, src.Title, src.Excerpt)
	}
	return strings.TrimRight(b.String(), "\n")
}
