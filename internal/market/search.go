// File: internal/market/search.go
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"krishipredict_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IndexName is the search index holding market listings.
const IndexName = "market_listings"

// Index keeps the search index in step with listings. A nil Index means
// search is served from the database.
type Index interface {
	EnsureIndex(ctx context.Context) error
	IndexListing(ctx context.Context, listing *Listing) error
	DeleteListing(ctx context.Context, id uuid.UUID) error
	// Search returns matching active listing ids, best match first.
	Search(ctx context.Context, query SearchQuery) ([]uuid.UUID, error)
	// BulkIndex indexes all listings and reports how many succeeded.
	BulkIndex(ctx context.Context, listings []Listing) (int, error)
}

var listingsMapping = map[string]interface{}{
	"properties": map[string]interface{}{
		"seller_name":    map[string]interface{}{"type": "text"},
		"district":       map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}},
		"state":          map[string]interface{}{"type": "keyword"},
		"crop":           map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}},
		"variety":        map[string]interface{}{"type": "text"},
		"quantity":       map[string]interface{}{"type": "double"},
		"unit":           map[string]interface{}{"type": "keyword"},
		"expected_price": map[string]interface{}{"type": "double"},
		"status":         map[string]interface{}{"type": "keyword"},
		"created_at":     map[string]interface{}{"type": "date"},
	},
}

type esIndex struct {
	client *elasticsearch.ESClientWrapper
	logger *zap.Logger
}

// NewIndex returns the Elasticsearch backed Index, or nil when no client is
// configured.
func NewIndex(client *elasticsearch.ESClientWrapper, logger *zap.Logger) Index {
	if client == nil {
		return nil
	}
	return &esIndex{client: client, logger: logger.Named("MarketIndex")}
}

func (i *esIndex) EnsureIndex(ctx context.Context) error {
	return elasticsearch.EnsureIndex(ctx, i.client, IndexName, listingsMapping, i.logger)
}

func (i *esIndex) IndexListing(ctx context.Context, listing *Listing) error {
	body, err := json.Marshal(toDocument(listing))
	if err != nil {
		return fmt.Errorf("error marshalling listing to JSON for ES: %w", err)
	}
	res, err := esapi.IndexRequest{
		Index:      IndexName,
		DocumentID: listing.ID.String(),
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("indexing listing %s: %w", listing.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexing listing %s: status %s", listing.ID, res.Status())
	}
	return nil
}

func (i *esIndex) DeleteListing(ctx context.Context, id uuid.UUID) error {
	res, err := esapi.DeleteRequest{Index: IndexName, DocumentID: id.String()}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("removing listing %s from index: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("removing listing %s from index: status %s", id, res.Status())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildSearchBody(query SearchQuery) map[string]interface{} {
	filter := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"status": string(StatusActive)}},
	}
	if d := strings.TrimSpace(query.District); d != "" {
		filter = append(filter, map[string]interface{}{"match": map[string]interface{}{"district": d}})
	}
	boolQuery := map[string]interface{}{"filter": filter}
	if q := strings.TrimSpace(query.Query); q != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{"multi_match": map[string]interface{}{
				"query":     q,
				"fields":    []string{"crop^3", "variety^2", "seller_name", "district"},
				"fuzziness": "AUTO",
			}},
		}
	}
	return map[string]interface{}{
		"size":    query.Limit,
		"_source": false,
		"query":   map[string]interface{}{"bool": boolQuery},
		"sort":    []interface{}{"_score", map[string]interface{}{"created_at": "desc"}},
	}
}

func (i *esIndex) Search(ctx context.Context, query SearchQuery) ([]uuid.UUID, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildSearchBody(query)); err != nil {
		return nil, fmt.Errorf("encoding search query: %w", err)
	}
	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(IndexName),
		i.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("searching listings: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("searching listings: status %s", res.Status())
	}

	var out searchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			i.logger.Warn("Skipping search hit with invalid id", zap.String("id", h.ID))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (i *esIndex) BulkIndex(ctx context.Context, listings []Listing) (int, error) {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:  IndexName,
		Client: i.client.Client,
		OnError: func(_ context.Context, err error) {
			i.logger.Error("Bulk indexer error", zap.Error(err))
		},
	})
	if err != nil {
		return 0, fmt.Errorf("creating bulk indexer: %w", err)
	}

	for idx := range listings {
		l := &listings[idx]
		body, err := json.Marshal(toDocument(l))
		if err != nil {
			i.logger.Error("Failed to convert listing to ES document", zap.String("listing_id", l.ID.String()), zap.Error(err))
			continue
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: l.ID.String(),
			Body:       bytes.NewReader(body),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					i.logger.Error("Failed to index listing", zap.String("listing_id", item.DocumentID), zap.Error(err))
					return
				}
				i.logger.Error("Failed to index listing",
					zap.String("listing_id", item.DocumentID),
					zap.String("type", res.Error.Type),
					zap.String("reason", res.Error.Reason))
			},
		})
		if err != nil {
			return 0, fmt.Errorf("adding listing %s to bulk indexer: %w", l.ID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return 0, fmt.Errorf("closing bulk indexer: %w", err)
	}
	stats := bi.Stats()
	return int(stats.NumIndexed), nil
}
