package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"ai-reading-tutor-be/internal/config"
	"ai-reading-tutor-be/internal/entity"
	"ai-reading-tutor-be/internal/repository/implementation"
	"ai-reading-tutor-be/internal/repository/specification"
	"ai-reading-tutor-be/pkg/database"
	"ai-reading-tutor-be/pkg/embedding"

	"github.com/google/uuid"
)

// chunkSize bounds one embedded slice; the search index stores vectors
// per chunk, so oversized chunks dilute similarity scores.
const chunkSize = 1200

type seedArticle struct {
	Title   string `json:"title"`
	Domain  string `json:"domain"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

func main() {
	cfg := config.Load()

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	userId, err := uuid.Parse(os.Getenv("SEED_USER_ID"))
	if err != nil {
		log.Fatal("Error: SEED_USER_ID must be a valid UUID")
	}

	seedPath := "seed/articles.json"
	if len(os.Args) > 1 {
		seedPath = os.Args[1]
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var embedder embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel)
	} else {
		embedder = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	raw, err := os.ReadFile(seedPath)
	if err != nil {
		log.Fatalf("Error: Failed to read seed file %s: %v", seedPath, err)
	}
	var articles []seedArticle
	if err := json.Unmarshal(raw, &articles); err != nil {
		log.Fatalf("Error: Invalid seed file: %v", err)
	}

	articleRepo := implementation.NewArticleRepository(db)
	chunkRepo := implementation.NewArticleChunkRepository(db)
	ctx := context.Background()

	log.Printf("Seeding %d articles for user %s...", len(articles), userId)

	// Skip titles the user already has so re-runs are safe
	existing, err := articleRepo.FindAll(ctx, specification.OwnedBy{UserID: userId})
	if err != nil {
		log.Fatalf("Error: Failed to list existing articles: %v", err)
	}
	seen := make(map[string]bool)
	for _, a := range existing {
		seen[a.Title] = true
	}

	for _, src := range articles {
		if seen[src.Title] {
			log.Printf("Article '%s' already exists, skipping...", src.Title)
			continue
		}

		article := &entity.Article{
			Id:      uuid.New(),
			UserId:  userId,
			Title:   src.Title,
			Content: src.Content,
			Summary: src.Summary,
			Domain:  src.Domain,
			Metadata: map[string]interface{}{
				"importOrigin": "seed",
				"wordCount":    len(strings.Fields(src.Content)),
			},
		}
		if err := articleRepo.Create(ctx, article); err != nil {
			log.Printf("Error creating article '%s': %v", src.Title, err)
			continue
		}

		// Re-runs after a partial failure start from a clean slate
		if err := chunkRepo.DeleteByArticleId(ctx, article.Id); err != nil {
			log.Printf("Error clearing chunks for '%s': %v", src.Title, err)
			continue
		}

		pieces := splitContent(src.Content, chunkSize)
		chunks := make([]*entity.ArticleChunk, 0, len(pieces))
		for seq, piece := range pieces {
			res, err := embedder.Generate(ctx, piece, embedding.TaskRetrievalDocument)
			if err != nil {
				log.Printf("Error embedding chunk %d of '%s': %v", seq, src.Title, err)
				continue
			}
			chunks = append(chunks, &entity.ArticleChunk{
				Id:        uuid.New(),
				ArticleId: article.Id,
				Seq:       seq,
				Content:   piece,
				Embedding: res.Values,
				CreatedAt: time.Now(),
			})
		}

		if err := chunkRepo.CreateBulk(ctx, chunks); err != nil {
			log.Printf("Error storing chunks for '%s': %v", src.Title, err)
			continue
		}
		log.Printf("Created article: %s (%d chunks)", src.Title, len(chunks))
	}

	log.Println("Article seeding completed!")
}

// splitContent breaks text on paragraph boundaries, packing paragraphs
// into chunks of at most max runes. A single paragraph longer than max
// is hard-split.
func splitContent(text string, max int) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		runes := []rune(p)
		for len(runes) > max {
			flush()
			chunks = append(chunks, string(runes[:max]))
			runes = runes[max:]
		}
		p = string(runes)
		if current.Len() > 0 && current.Len()+len(p)+2 > max {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()
	return chunks
}
