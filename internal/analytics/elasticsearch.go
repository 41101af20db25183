// internal/analytics/elasticsearch.go
package analytics

import (
	"bytes"
	"context"
	"fmt"

	"moodbrew/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	json "github.com/goccy/go-json"
)

const DefaultIndex = "ai-analytics"

// IndexMapping is applied when the analytics index is created.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "id":        {"type": "keyword"},
      "kind":      {"type": "keyword"},
      "inputSize": {"type": "integer"},
      "outcome":   {"type": "keyword"},
      "timestamp": {"type": "date"}
    }
  }
}`

type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSink(client *elasticsearch.Client, index string) *ElasticsearchSink {
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticsearchSink{client: client, index: index}
}

func (s *ElasticsearchSink) Name() string { return "elasticsearch" }

func (s *ElasticsearchSink) Index() string { return s.index }

func (s *ElasticsearchSink) Record(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return errors.NewAnalyticsWriteFailedError(s.Name(), err)
	}

	res, err := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: rec.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, s.client)
	if err != nil {
		return errors.NewAnalyticsWriteFailedError(s.Name(), err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewAnalyticsWriteFailedError(s.Name(), fmt.Errorf("index %s: %s", s.index, res.Status()))
	}
	return nil
}
