package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"krishipredict_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const mlURL = "http://ml.example.test"

func newTestClient(t *testing.T) Client {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewClient(&config.Config{MLServerURL: mlURL + "/", MLTimeout: time.Second}, zap.NewNop())
}

func TestClient_Predict(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost, mlURL+"/v1/predict", func(req *http.Request) (*http.Response, error) {
		var in PriceRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
		assert.Equal(t, "onion", in.Crop)
		assert.Equal(t, 1.0, in.AreaAcres)
		return httpmock.NewStringResponse(http.StatusOK, `{"current_price":1550,"trend":"increasing"}`), nil
	})

	res, err := client.Predict(context.Background(), PriceRequest{Crop: "onion", District: "Sehore", State: "Madhya Pradesh", AreaAcres: 1})
	require.NoError(t, err)
	assert.Equal(t, 1550.0, *res.CurrentPrice)
	assert.Equal(t, "increasing", res.Trend)
}

func TestClient_Predict_MissingPrice(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodPost, mlURL+"/v1/predict",
		httpmock.NewStringResponder(http.StatusOK, `{"trend":"stable"}`))

	_, err := client.Predict(context.Background(), PriceRequest{Crop: "wheat"})
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestClient_DetectRawReturnsBodyVerbatim(t *testing.T) {
	client := newTestClient(t)
	const body = `{"disease":"Tomato - Late Blight","confidence":0.91,"status":"Danger"}`
	httpmock.RegisterResponder(http.MethodPost, mlURL+"/v1/detect-disease",
		httpmock.NewStringResponder(http.StatusOK, body))

	raw, err := client.DetectRaw(context.Background(), map[string]interface{}{"image": "base64"})
	require.NoError(t, err)
	assert.JSONEq(t, body, string(raw))
}

func TestHandler_Predict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client := newTestClient(t)
	r := gin.New()
	NewHandler(client, zap.NewNop()).RegisterRoutes(r.Group("/api/v1"))

	httpmock.RegisterResponder(http.MethodPost, mlURL+"/v1/predict", func(req *http.Request) (*http.Response, error) {
		var in map[string]interface{}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
		assert.Equal(t, 1.0, in["area_acres"])
		assert.Equal(t, "garlic", in["crop"])
		return httpmock.NewStringResponse(http.StatusOK, `{"current_price":18500,"forecast":[]}`), nil
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", bytes.NewBufferString(`{"crop":"garlic","district":"Sehore"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"current_price":18500,"forecast":[]}`, w.Body.String())
}

func TestHandler_Predict_Unavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client := newTestClient(t)
	r := gin.New()
	NewHandler(client, zap.NewNop()).RegisterRoutes(r.Group("/api/v1"))

	httpmock.RegisterResponder(http.MethodPost, mlURL+"/v1/predict",
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"detail":"model not loaded"}`))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", bytes.NewBufferString(`{"crop":"wheat"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "ML Server unavailable. Please try again.")
}
