package retrieval

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"ai-reading-tutor-be/internal/entity"
	"ai-reading-tutor-be/internal/repository/contract"
	"ai-reading-tutor-be/internal/repository/specification"
	"ai-reading-tutor-be/pkg/embedding"

	"github.com/google/uuid"
)

type fakeEmbedder struct {
	lastTask string
}

func (f *fakeEmbedder) Generate(_ context.Context, _ string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.lastTask = taskType
	return &embedding.EmbeddingResponse{Values: []float32{0.1, 0.2, 0.3}}, nil
}

type fakeChunkRepo struct {
	scored  []*contract.ScoredChunk
	lastTop int
}

func (f *fakeChunkRepo) CreateBulk(context.Context, []*entity.ArticleChunk) error { return nil }
func (f *fakeChunkRepo) DeleteByArticleId(context.Context, uuid.UUID) error       { return nil }

func (f *fakeChunkRepo) SearchSimilarWithScore(
	_ context.Context, _ []float32, topK int, _ uuid.UUID, _ []uuid.UUID, _ *uuid.UUID,
) ([]*contract.ScoredChunk, error) {
	f.lastTop = topK
	return f.scored, nil
}

type fakeArticleRepo struct {
	summaries []*entity.ArticleSummary
}

func (f *fakeArticleRepo) Create(context.Context, *entity.Article) error { return nil }

func (f *fakeArticleRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Article, error) {
	return nil, nil
}

func (f *fakeArticleRepo) FindSummaries(context.Context, uuid.UUID, []uuid.UUID, *uuid.UUID) ([]*entity.ArticleSummary, error) {
	return f.summaries, nil
}

func stubArticles(summaries []*entity.ArticleSummary) contract.ArticleRepository {
	return &fakeArticleRepo{summaries: summaries}
}

func scoredChunk(articleId uuid.UUID, content string, sim float64) *contract.ScoredChunk {
	return &contract.ScoredChunk{
		Chunk:      &entity.ArticleChunk{Id: uuid.New(), ArticleId: articleId, Content: content},
		Title:      "Article " + articleId.String()[:8],
		Similarity: sim,
	}
}

func newTestService(chunks contract.ArticleChunkRepository, articles contract.ArticleRepository) *Service {
	return NewService(&fakeEmbedder{}, chunks, articles, log.New(io.Discard, "", 0))
}

func TestSearchDeduplicatesPerArticle(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	repo := &fakeChunkRepo{scored: []*contract.ScoredChunk{
		scoredChunk(a, "best chunk of a", 0.95),
		scoredChunk(b, "best chunk of b", 0.90),
		scoredChunk(a, "worse chunk of a", 0.70),
	}}
	svc := newTestService(repo, stubArticles(nil))

	res, err := svc.Search(context.Background(), SearchRequest{
		Query: "q", UserId: uuid.New(), TopK: 5,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Sources) != 2 {
		t.Fatalf("expected 2 deduplicated sources, got %d", len(res.Sources))
	}
	if res.Sources[0].ArticleId != a || res.Sources[0].Excerpt != "best chunk of a" {
		t.Errorf("best-scoring chunk must win per article: %+v", res.Sources[0])
	}
	if repo.lastTop != 5 {
		t.Errorf("topK not forwarded: %d", repo.lastTop)
	}
}

func TestSearchTruncatesExcerpts(t *testing.T) {
	long := strings.Repeat("x", MaxExcerptLen+100)
	repo := &fakeChunkRepo{scored: []*contract.ScoredChunk{
		scoredChunk(uuid.New(), long, 0.9),
	}}
	svc := newTestService(repo, stubArticles(nil))

	res, err := svc.Search(context.Background(), SearchRequest{Query: "q", UserId: uuid.New(), TopK: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	excerpt := res.Sources[0].Excerpt
	if len([]rune(excerpt)) != MaxExcerptLen+3 || !strings.HasSuffix(excerpt, "...") {
		t.Errorf("excerpt not truncated: len=%d", len(excerpt))
	}
}

func TestSearchUsesQueryTaskType(t *testing.T) {
	emb := &fakeEmbedder{}
	svc := NewService(emb, &fakeChunkRepo{}, stubArticles(nil), log.New(io.Discard, "", 0))

	if _, err := svc.Search(context.Background(), SearchRequest{Query: "q", UserId: uuid.New(), TopK: 1}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if emb.lastTask != embedding.TaskRetrievalQuery {
		t.Errorf("task type = %q, want %q", emb.lastTask, embedding.TaskRetrievalQuery)
	}
}

func TestSummariesArePseudoSources(t *testing.T) {
	id := uuid.New()
	svc := newTestService(&fakeChunkRepo{}, stubArticles([]*entity.ArticleSummary{
		{ArticleId: id, Title: "Deep Work", Summary: "Focus matters.", Domain: "productivity"},
	}))

	sources, err := svc.Summaries(context.Background(), uuid.New(), Filter{})
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	if sources[0].Similarity != 1.0 || sources[0].Title != "Deep Work" {
		t.Errorf("unexpected pseudo-source: %+v", sources[0])
	}
}

func TestFilterEmpty(t *testing.T) {
	if !(Filter{}).Empty() {
		t.Error("zero filter must be empty")
	}
	id := uuid.New()
	if (Filter{ArticleIds: []uuid.UUID{id}}).Empty() {
		t.Error("filter with article ids is not empty")
	}
	if (Filter{CollectionId: &id}).Empty() {
		t.Error("filter with collection is not empty")
	}
}
