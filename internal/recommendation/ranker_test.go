package recommendation

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/prediction"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) PredictRaw(ctx context.Context, body map[string]interface{}) ([]byte, error) {
	args := m.Called(ctx, body)
	return nil, args.Error(1)
}

func (m *MockPredictor) DetectRaw(ctx context.Context, body map[string]interface{}) ([]byte, error) {
	args := m.Called(ctx, body)
	return nil, args.Error(1)
}

func (m *MockPredictor) Predict(ctx context.Context, req prediction.PriceRequest) (*prediction.PriceResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*prediction.PriceResult), args.Error(1)
}

// barrierPredictor answers only once every seasonal crop has been requested,
// so it fails unless the requests are in flight together.
type barrierPredictor struct {
	MockPredictor
	inFlight atomic.Int32
	allIn    chan struct{}
}

func newBarrierPredictor() *barrierPredictor {
	return &barrierPredictor{allIn: make(chan struct{})}
}

func (b *barrierPredictor) Predict(ctx context.Context, req prediction.PriceRequest) (*prediction.PriceResult, error) {
	if b.inFlight.Add(1) == int32(len(SeasonalCrops)) {
		close(b.allIn)
	}
	select {
	case <-b.allIn:
		return price(1000), nil
	case <-time.After(2 * time.Second):
		return nil, errors.New("price requests were not issued concurrently")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func testConfig() *config.Config {
	return &config.Config{DefaultDistrict: "Sehore", DefaultState: "Madhya Pradesh"}
}

func price(v float64) *prediction.PriceResult {
	return &prediction.PriceResult{CurrentPrice: &v, Trend: "stable"}
}

func forCrop(crop string) interface{} {
	return mock.MatchedBy(func(req prediction.PriceRequest) bool { return req.Crop == crop })
}

func TestRank_PicksMostProfitableAndSafeStaple(t *testing.T) {
	m := new(MockPredictor)
	m.On("Predict", mock.Anything, forCrop("wheat")).Return(price(2000), nil)   // 28000
	m.On("Predict", mock.Anything, forCrop("garlic")).Return(price(19500), nil) // 740000
	m.On("Predict", mock.Anything, forCrop("onion")).Return(price(1800), nil)   // 155000
	m.On("Predict", mock.Anything, forCrop("potato")).Return(price(1200), nil)  // 114000
	m.On("Predict", mock.Anything, forCrop("rice")).Return(price(2100), nil)    // 37500

	rec, err := NewRanker(m, testConfig(), zap.NewNop()).Rank(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "Sehore", rec.District)
	assert.Equal(t, "garlic", rec.Top.Crop)
	assert.Equal(t, "Garlic", rec.Top.DisplayName)
	assert.Equal(t, 740000.0, rec.Top.Profit)
	assert.Equal(t, "rice", rec.Safe.Crop, "rice out-earns wheat")
	require.Len(t, rec.Ranked, 5)
	assert.Equal(t, []string{"garlic", "onion", "potato", "rice", "wheat"}, cropsOf(rec.Ranked))
	m.AssertNumberOfCalls(t, "Predict", 5)
}

func TestRank_SendsDistrictAndDefaults(t *testing.T) {
	m := new(MockPredictor)
	m.On("Predict", mock.Anything, mock.MatchedBy(func(req prediction.PriceRequest) bool {
		return req.District == "Indore" && req.State == "Madhya Pradesh" && req.AreaAcres == 1
	})).Return(price(1000), nil)

	_, err := NewRanker(m, testConfig(), zap.NewNop()).Rank(context.Background(), "  Indore ")
	require.NoError(t, err)
	m.AssertNumberOfCalls(t, "Predict", 5)
}

func TestRank_UsesConfiguredDefaults(t *testing.T) {
	m := new(MockPredictor)
	m.On("Predict", mock.Anything, mock.MatchedBy(func(req prediction.PriceRequest) bool {
		return req.District == "Indore" && req.State == "Gujarat"
	})).Return(price(1000), nil)

	cfg := &config.Config{DefaultDistrict: "Indore", DefaultState: "Gujarat"}
	rec, err := NewRanker(m, cfg, zap.NewNop()).Rank(context.Background(), " ")
	require.NoError(t, err)
	assert.Equal(t, "Indore", rec.District)
	m.AssertNumberOfCalls(t, "Predict", 5)
}

func TestRank_RequestsRunConcurrently(t *testing.T) {
	b := newBarrierPredictor()

	rec, err := NewRanker(b, testConfig(), zap.NewNop()).Rank(context.Background(), "Sehore")
	require.NoError(t, err)
	assert.Len(t, rec.Ranked, len(SeasonalCrops))
	assert.EqualValues(t, len(SeasonalCrops), b.inFlight.Load())
}

func TestRank_SameInputSameRanking(t *testing.T) {
	m := new(MockPredictor)
	m.On("Predict", mock.Anything, forCrop("wheat")).Return(price(2000), nil)
	m.On("Predict", mock.Anything, forCrop("garlic")).Return(price(1000), nil)
	m.On("Predict", mock.Anything, forCrop("onion")).Return(price(1000), nil)
	m.On("Predict", mock.Anything, forCrop("potato")).Return(price(1000), nil)
	m.On("Predict", mock.Anything, forCrop("rice")).Return(price(2100), nil)
	r := NewRanker(m, testConfig(), zap.NewNop())

	first, err := r.Rank(context.Background(), "Sehore")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := r.Rank(context.Background(), "Sehore")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRank_AnyFailureFailsAll(t *testing.T) {
	m := new(MockPredictor)
	m.On("Predict", mock.Anything, forCrop("onion")).Return(nil, errors.New("ml down"))
	m.On("Predict", mock.Anything, mock.Anything).Return(price(1000), nil)

	rec, err := NewRanker(m, testConfig(), zap.NewNop()).Rank(context.Background(), "Sehore")
	assert.Error(t, err)
	assert.Nil(t, rec)
}

func TestRankResults(t *testing.T) {
	t.Run("safe falls back to second when no staple", func(t *testing.T) {
		rec := rankResults("Sehore", []RankedCrop{
			{Crop: "onion", Profit: 10},
			{Crop: "garlic", Profit: 30},
			{Crop: "potato", Profit: 20},
		})
		assert.Equal(t, "garlic", rec.Top.Crop)
		assert.Equal(t, "potato", rec.Safe.Crop)
	})

	t.Run("single result is both picks", func(t *testing.T) {
		rec := rankResults("Sehore", []RankedCrop{{Crop: "onion", Profit: 10}})
		assert.Equal(t, "onion", rec.Top.Crop)
		assert.Equal(t, "onion", rec.Safe.Crop)
	})

	t.Run("ties keep candidate order", func(t *testing.T) {
		rec := rankResults("Sehore", []RankedCrop{
			{Crop: "wheat", Profit: 5},
			{Crop: "garlic", Profit: 5},
		})
		assert.Equal(t, "wheat", rec.Top.Crop)
		assert.Equal(t, "wheat", rec.Safe.Crop)
	})

	t.Run("staple is chosen even if top", func(t *testing.T) {
		rec := rankResults("Sehore", []RankedCrop{
			{Crop: "wheat", Profit: 50},
			{Crop: "garlic", Profit: 5},
		})
		assert.Equal(t, "wheat", rec.Safe.Crop)
	})
}

func TestProfitAndCalculators(t *testing.T) {
	assert.Equal(t, 28000.0, Profit("wheat", 2000))
	assert.Equal(t, 5000.0, Profit("Soybean", 1000), "unknown crops use the fallback figures")

	est := SimulateProfit(ProfitRequest{Crop: "Tomato", Acres: 2, Price: 500})
	assert.Equal(t, "tomato", est.Crop)
	assert.Equal(t, 300.0, est.TotalYield)
	assert.Equal(t, 150000.0, est.Revenue)
	assert.Equal(t, 70000.0, est.Cost)
	assert.Equal(t, 80000.0, est.NetProfit)
	assert.Equal(t, 114.0, est.ROI)

	plan := PlanFertilizer(FertilizerRequest{Crop: "wheat", Acres: 2})
	assert.Equal(t, 220.0, plan.Urea.Kg)
	assert.Equal(t, 4.9, plan.Urea.Bags)
	assert.Equal(t, 2.0, plan.DAP.Bags)
	assert.Equal(t, 1.2, plan.MOP.Bags)
	assert.Equal(t, 6043.0, plan.Cost)

	unknown := PlanFertilizer(FertilizerRequest{Crop: "millet", Acres: 1})
	assert.Equal(t, 110.0, unknown.Urea.Kg)
}

func TestHandler_Calculators(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewRanker(new(MockPredictor), testConfig(), zap.NewNop()), zap.NewNop()).RegisterRoutes(r.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculator/fertilizer", bytes.NewBufferString(`{"crop":"rice","acres":1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_cost"`)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/calculator/profit", bytes.NewBufferString(`{"crop":"rice","acres":0}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_RecommendationFailureIs503(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := new(MockPredictor)
	m.On("Predict", mock.Anything, mock.Anything).Return(nil, errors.New("ml down"))
	r := gin.New()
	NewHandler(NewRanker(m, testConfig(), zap.NewNop()), zap.NewNop()).RegisterRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/Sehore", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func cropsOf(rs []RankedCrop) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Crop
	}
	return out
}
