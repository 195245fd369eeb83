package market

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"krishipredict_backend/internal/platform/elasticsearch"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const esURL = "http://es.example.test:9200"

func esResponder(status int, body string) httpmock.Responder {
	return func(*http.Request) (*http.Response, error) {
		resp := httpmock.NewStringResponse(status, body)
		resp.Header.Set("X-Elastic-Product", "Elasticsearch")
		resp.Header.Set("Content-Type", "application/json")
		return resp, nil
	}
}

func newTestIndex(t *testing.T) Index {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	client, err := es.NewClient(es.Config{
		Addresses: []string{esURL},
		Transport: httpmock.DefaultTransport,
	})
	require.NoError(t, err)
	return NewIndex(&elasticsearch.ESClientWrapper{Client: client}, zap.NewNop())
}

func TestNewIndex_NilClient(t *testing.T) {
	assert.Nil(t, NewIndex(nil, zap.NewNop()))
}

func TestIndex_Search(t *testing.T) {
	idx := newTestIndex(t)
	id := uuid.New()

	httpmock.RegisterResponder(http.MethodPost, esURL+"/"+IndexName+"/_search", func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.EqualValues(t, 5, body["size"])
		assert.Contains(t, string(raw), `"multi_match"`)
		assert.Contains(t, string(raw), `"status":"active"`)
		return esResponder(http.StatusOK, `{"hits":{"hits":[{"_id":"`+id.String()+`"},{"_id":"bogus"}]}}`)(req)
	})

	ids, err := idx.Search(context.Background(), SearchQuery{Query: "wheat", District: "Sehore", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, ids)
}

func TestIndex_SearchError(t *testing.T) {
	idx := newTestIndex(t)
	httpmock.RegisterResponder(http.MethodPost, esURL+"/"+IndexName+"/_search",
		esResponder(http.StatusBadRequest, `{"error":"bad query"}`))

	_, err := idx.Search(context.Background(), SearchQuery{Limit: 5})
	assert.Error(t, err)
}

func TestIndex_IndexAndDelete(t *testing.T) {
	idx := newTestIndex(t)
	listing := &Listing{Crop: "Wheat", District: "Sehore", Status: StatusActive}
	listing.ID = uuid.New()

	httpmock.RegisterResponder(http.MethodPut, esURL+"/"+IndexName+"/_doc/"+listing.ID.String(), func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		assert.True(t, strings.Contains(string(raw), `"crop":"Wheat"`))
		return esResponder(http.StatusCreated, `{"result":"created"}`)(req)
	})
	httpmock.RegisterResponder(http.MethodDelete, esURL+"/"+IndexName+"/_doc/"+listing.ID.String(),
		esResponder(http.StatusNotFound, `{"result":"not_found"}`))

	require.NoError(t, idx.IndexListing(context.Background(), listing))
	assert.NoError(t, idx.DeleteListing(context.Background(), listing.ID), "missing documents are already deleted")
}

func TestBuildSearchBody_NoQueryMatchesAllActive(t *testing.T) {
	body := buildSearchBody(SearchQuery{Limit: 10})
	q := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	_, hasMust := q["must"]
	assert.False(t, hasMust)
	assert.Len(t, q["filter"], 1)
}
