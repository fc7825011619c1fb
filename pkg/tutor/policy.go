package tutor

// RetrievalMode selects how aggressively the retriever searches.
type RetrievalMode string

const (
	RetrievalFast          RetrievalMode = "fast"
	RetrievalComprehensive RetrievalMode = "comprehensive"
)

// RetrievalPolicy is the per-turn configuration governing whether and
// how aggressively to search the corpus. Instances may originate from
// model structured output, so every numeric field must pass through
// Sanitized before use.
type RetrievalPolicy struct {
	Enabled       bool          `json:"enabled"`
	Mode          RetrievalMode `json:"mode"`
	TopK          int           `json:"topK"`
	MinSimilarity float64       `json:"minSimilarity"`
	MinSources    int           `json:"minSources"`
	RewriteQuery  bool          `json:"rewriteQuery"`
	Confidence    float64       `json:"confidence"`
	Reason        string        `json:"reason,omitempty"`
}

// Sanitized clamps every numeric field into its valid range and
// normalizes the mode. Untrusted policy values never propagate
// unclamped.
func (p RetrievalPolicy) Sanitized() RetrievalPolicy {
	p.TopK = clampInt(p.TopK, 1, 10)
	p.MinSimilarity = clampFloat(p.MinSimilarity, 0, 1)
	p.MinSources = clampInt(p.MinSources, 0, 10)
	p.Confidence = clampFloat(p.Confidence, 0, 1)
	if p.Mode != RetrievalComprehensive {
		p.Mode = RetrievalFast
	}
	return p
}

// FastPolicy is the low-friction default used by qa and copilot modes.
func FastPolicy(rewrite bool) RetrievalPolicy {
	return RetrievalPolicy{
		Enabled:       true,
		Mode:          RetrievalFast,
		TopK:          5,
		MinSimilarity: 0.2,
		MinSources:    0,
		RewriteQuery:  rewrite,
		Confidence:    1.0,
		Reason:        "mode default",
	}
}

// DisabledPolicy skips retrieval entirely, e.g. when inline reader
// context already covers the question.
func DisabledPolicy(reason string) RetrievalPolicy {
	return RetrievalPolicy{
		Enabled:    false,
		Mode:       RetrievalFast,
		TopK:       1,
		Confidence: 1.0,
		Reason:     reason,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
