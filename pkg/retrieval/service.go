package retrieval

import (
	"context"
	"fmt"
	"log"

	"ai-reading-tutor-be/internal/repository/contract"
	"ai-reading-tutor-be/pkg/embedding"

	"github.com/google/uuid"
)

// Search modes. Comprehensive raises candidate counts upstream; the
// service itself treats them identically today.
const (
	ModeFast          = "fast"
	ModeComprehensive = "comprehensive"
)

// MaxExcerptLen bounds citation excerpts.
const MaxExcerptLen = 500

// Filter narrows a search to explicit articles and/or one collection.
type Filter struct {
	ArticleIds   []uuid.UUID
	CollectionId *uuid.UUID
}

// Empty reports whether no explicit filter is set.
func (f Filter) Empty() bool {
	return len(f.ArticleIds) == 0 && f.CollectionId == nil
}

// SearchRequest is one similarity query against a user's corpus.
type SearchRequest struct {
	Query  string
	UserId uuid.UUID
	Filter Filter
	Mode   string
	TopK   int
}

// Source is a citation: where a piece of grounding material came from.
// Sources are immutable once attached to a turn.
type Source struct {
	ArticleId  uuid.UUID `json:"articleId"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Similarity float64   `json:"similarity"`
	Domain     string    `json:"domain,omitempty"`
}

// SearchResult carries candidates in descending similarity order.
type SearchResult struct {
	Sources []Source
}

// Service runs vector-similarity search over article chunks, plus the
// summary mode used for whole-document overviews.
type Service struct {
	embedder embedding.EmbeddingProvider
	chunks   contract.ArticleChunkRepository
	articles contract.ArticleRepository
	logger   *log.Logger
}

func NewService(
	embedder embedding.EmbeddingProvider,
	chunks contract.ArticleChunkRepository,
	articles contract.ArticleRepository,
	logger *log.Logger,
) *Service {
	return &Service{
		embedder: embedder,
		chunks:   chunks,
		articles: articles,
		logger:   logger,
	}
}

// Search embeds the query and runs nearest-neighbor search restricted
// to the caller's own documents and the optional filter.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	embeddingRes, err := s.embedder.Generate(ctx, req.Query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	scored, err := s.chunks.SearchSimilarWithScore(
		ctx,
		embeddingRes.Values,
		req.TopK,
		req.UserId,
		req.Filter.ArticleIds,
		req.Filter.CollectionId,
	)
	if err != nil {
		s.logger.Printf("[ERROR] Vector search failed: %v", err)
		return nil, err
	}

	s.logger.Printf("[DEBUG] Raw search results: %d chunks", len(scored))

	sources := make([]Source, 0, len(scored))
	seen := make(map[uuid.UUID]bool)
	for _, res := range scored {
		// One citation per article: keep the best-scoring chunk
		if seen[res.Chunk.ArticleId] {
			continue
		}
		seen[res.Chunk.ArticleId] = true
		sources = append(sources, Source{
			ArticleId:  res.Chunk.ArticleId,
			Title:      res.Title,
			Excerpt:    truncate(res.Chunk.Content, MaxExcerptLen),
			Similarity: res.Similarity,
			Domain:     res.Domain,
		})
	}

	return &SearchResult{Sources: sources}, nil
}

// Summaries returns per-article overviews as pseudo-sources with
// similarity 1.0, the "table of contents" context for plan turns.
func (s *Service) Summaries(ctx context.Context, userId uuid.UUID, filter Filter) ([]Source, error) {
	summaries, err := s.articles.FindSummaries(ctx, userId, filter.ArticleIds, filter.CollectionId)
	if err != nil {
		return nil, fmt.Errorf("summary lookup failed: %w", err)
	}

	sources := make([]Source, len(summaries))
	for i, sum := range summaries {
		sources[i] = Source{
			ArticleId:  sum.ArticleId,
			Title:      sum.Title,
			Excerpt:    truncate(sum.Summary, MaxExcerptLen),
			Similarity: 1.0,
			Domain:     sum.Domain,
		}
	}
	return sources, nil
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
