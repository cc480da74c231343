package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/internal/projects"
)

// Indexer maintains a best-effort full-text index of projects. Index
// writes never block or fail the owning request; a broken cluster only
// degrades search.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger *zap.Logger
}

// NewIndexer creates a project search indexer.
func NewIndexer(addresses []string, index string, logger *zap.Logger) (*Indexer, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Indexer{client: client, index: index, logger: logger}, nil
}

type projectDocument struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	RegionID     string  `json:"regionId"`
	Currency     string  `json:"currency"`
	TargetAmount float64 `json:"targetAmount"`
}

// IndexProject writes or replaces the project document.
func (i *Indexer) IndexProject(ctx context.Context, p *projects.Project) error {
	doc := projectDocument{
		ID:           p.ID.String(),
		Title:        p.Title,
		Description:  p.Description,
		Category:     p.Category,
		RegionID:     p.RegionID,
		Currency:     p.Currency,
		TargetAmount: p.TargetAmount,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode project document: %w", err)
	}

	res, err := i.client.Index(i.index, bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to index project: %w", err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.IsError() {
		return fmt.Errorf("index request failed: %s", res.Status())
	}
	return nil
}

// SearchProjects runs a multi-field match query and returns matching
// project ids in relevance order.
func (i *Indexer) SearchProjects(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}

	var buf bytes.Buffer
	search := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "description", "category", "regionId"},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(search); err != nil {
		return nil, fmt.Errorf("failed to encode search query: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search request failed: %s: %s", res.Status(), strings.TrimSpace(string(msg)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
