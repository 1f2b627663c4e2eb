// Package service 提供了搜索相关的业务逻辑。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"

	"lumira-go/internal/model"
	"lumira-go/pkg/log"
)

// SearchService 接口定义了对话消息的全文搜索。
type SearchService interface {
	SearchMessages(ctx context.Context, query string, dialogID uint, topK int) ([]model.MessageSearchHit, error)
}

type searchService struct {
	esClient  *elasticsearch.Client
	indexName string
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(esClient *elasticsearch.Client, indexName string) SearchService {
	return &searchService{esClient: esClient, indexName: indexName}
}

// SearchMessages 在消息索引上执行 match 查询；dialogID 非零时限定单个对话。
func (s *searchService) SearchMessages(ctx context.Context, query string, dialogID uint, topK int) ([]model.MessageSearchHit, error) {
	if topK <= 0 {
		topK = 10
	}

	must := []map[string]interface{}{
		{"match": map[string]interface{}{"content": query}},
	}
	var filter []map[string]interface{}
	if dialogID != 0 {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"dialog_id": dialogID},
		})
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"size": topK,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.indexName),
		s.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[SearchService] Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.MessageDocument `json:"_source"`
				Score  float64               `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	hits := make([]model.MessageSearchHit, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		hits = append(hits, model.MessageSearchHit{
			DialogID:  hit.Source.DialogID,
			MessageID: hit.Source.MessageID,
			Role:      hit.Source.Role,
			Content:   hit.Source.Content,
			Topic:     hit.Source.Topic,
			Score:     hit.Score,
		})
	}
	return hits, nil
}
