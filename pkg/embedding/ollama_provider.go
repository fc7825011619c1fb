package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

func NewOllamaProvider(baseURL, modelName string) EmbeddingProvider {
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (p *OllamaProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	// Nomic-style models expect a task prefix; map the generic task
	// types onto it
	prefix := "search_document: "
	if taskType == TaskRetrievalQuery {
		prefix = "search_query: "
	}

	body, err := json.Marshal(ollamaEmbedRequest{
		Model:  p.ModelName,
		Prompt: prefix + text,
	})
	if err != nil {
		return nil, err
	}

	url := p.BaseURL + "/api/embeddings"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		resBytes, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("ollama embedding returned status %d: %s", res.StatusCode, string(resBytes))
	}

	var embedRes ollamaEmbedResponse
	if err := json.NewDecoder(res.Body).Decode(&embedRes); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(embedRes.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned empty embedding")
	}

	return &EmbeddingResponse{Values: embedRes.Embedding}, nil
}
