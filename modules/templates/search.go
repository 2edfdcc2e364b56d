package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// Indexer mirrors saved templates into a search backend. Indexing is
// best-effort: the store stays the source of truth and search results are
// resolved back through it.
type Indexer interface {
	Index(ctx context.Context, tpl *Template) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, userID, query string, limit int) ([]string, error)
}

const defaultSearchIndex = "templates"

// OpenSearchIndexer implements Indexer on an OpenSearch cluster. Documents
// carry just the searchable fields; hits return template ids only.
type OpenSearchIndexer struct {
	client *opensearch.Client
	index  string
}

func NewOpenSearchIndexer(client *opensearch.Client, index string) *OpenSearchIndexer {
	if index == "" {
		index = defaultSearchIndex
	}
	return &OpenSearchIndexer{client: client, index: index}
}

// EnsureIndex creates the index with its mapping. An index that already
// exists is fine; any other error is reported.
func (s *OpenSearchIndexer) EnsureIndex(ctx context.Context) error {
	mapping := `{
		"mappings": {
			"properties": {
				"user_id":  {"type": "keyword"},
				"name":     {"type": "text"},
				"document": {"type": "text"}
			}
		}
	}`

	req := opensearchapi.IndicesCreateRequest{
		Index: s.index,
		Body:  strings.NewReader(mapping),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("create search index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		if strings.Contains(string(body), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("create search index: %s", string(body))
	}
	return nil
}

type searchDocument struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Document string `json:"document"`
}

func (s *OpenSearchIndexer) Index(ctx context.Context, tpl *Template) error {
	body, err := json.Marshal(searchDocument{
		UserID:   tpl.UserID,
		Name:     tpl.Name,
		Document: tpl.Document,
	})
	if err != nil {
		return fmt.Errorf("marshal search document: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index:      s.index,
		DocumentID: tpl.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index template: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index template: %s", string(raw))
	}
	return nil
}

func (s *OpenSearchIndexer) Delete(ctx context.Context, id string) error {
	req := opensearchapi.DeleteRequest{
		Index:      s.index,
		DocumentID: id,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("delete indexed template: %w", err)
	}
	defer res.Body.Close()

	// 404 means the template was never indexed, which is not a failure.
	if res.IsError() && res.StatusCode != 404 {
		raw, _ := io.ReadAll(res.Body)
		return fmt.Errorf("delete indexed template: %s", string(raw))
	}
	return nil
}

func (s *OpenSearchIndexer) Search(ctx context.Context, userID, query string, limit int) ([]string, error) {
	body, err := json.Marshal(map[string]any{
		"size":    limit,
		"_source": false,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"user_id": userID}},
				},
				"must": []any{
					map[string]any{"multi_match": map[string]any{
						"query":  query,
						"fields": []string{"name^2", "document"},
					}},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search templates: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search templates: %s", string(raw))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
