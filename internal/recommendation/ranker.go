// File: internal/recommendation/ranker.go
package recommendation

import (
	"context"
	"fmt"
	"sort"

	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/prediction"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SeasonalCrops are the candidates ranked for every district, in tie-break order.
var SeasonalCrops = []string{"wheat", "garlic", "onion", "potato", "rice"}

// safeCrops are the staples preferred as the low risk pick.
var safeCrops = map[string]bool{"wheat": true, "rice": true}

// RankedCrop is one candidate with its predicted price and per acre profit.
type RankedCrop struct {
	Crop        string  `json:"crop"`
	DisplayName string  `json:"display_name"`
	Price       float64 `json:"price"`
	Trend       string  `json:"trend,omitempty"`
	Profit      float64 `json:"profit"`
}

// Recommendation is the ranker output.
type Recommendation struct {
	District string       `json:"district"`
	Top      RankedCrop   `json:"top"`
	Safe     RankedCrop   `json:"safe"`
	Ranked   []RankedCrop `json:"ranked"`
}

// Ranker picks the most profitable and the safest crop for a district.
type Ranker interface {
	Rank(ctx context.Context, district string) (*Recommendation, error)
}

type ranker struct {
	predictor prediction.Client
	crops     []string
	cfg       *config.Config
	logger    *zap.Logger
}

// NewRanker creates a Ranker over the seasonal crops. Price requests use the
// configured default state, and an empty district means the default one.
func NewRanker(predictor prediction.Client, cfg *config.Config, logger *zap.Logger) Ranker {
	return &ranker{
		predictor: predictor,
		crops:     SeasonalCrops,
		cfg:       cfg,
		logger:    logger.Named("Ranker"),
	}
}

// Rank requests a price for every candidate concurrently. Any failure fails
// the whole ranking and cancels the requests still in flight.
func (r *ranker) Rank(ctx context.Context, district string) (*Recommendation, error) {
	district = r.cfg.DistrictOr(district)
	state := r.cfg.StateOr("")
	results := make([]RankedCrop, len(r.crops))

	g, gctx := errgroup.WithContext(ctx)
	for i, crop := range r.crops {
		g.Go(func() error {
			res, err := r.predictor.Predict(gctx, prediction.PriceRequest{
				Crop:      crop,
				District:  district,
				State:     state,
				AreaAcres: prediction.DefaultAreaAcres,
			})
			if err != nil {
				return fmt.Errorf("predicting %s: %w", crop, err)
			}
			price := *res.CurrentPrice
			results[i] = RankedCrop{
				Crop:   crop,
				Price:  price,
				Trend:  res.Trend,
				Profit: Profit(crop, price),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Warn("Ranking failed", zap.String("district", district), zap.Error(err))
		return nil, err
	}

	// A Caser is stateful; one per call.
	title := cases.Title(language.English)
	for i := range results {
		results[i].DisplayName = title.String(results[i].Crop)
	}
	return rankResults(district, results), nil
}

// rankResults orders by profit and chooses the top and safe picks. The sort is
// stable so equal profits keep candidate order.
func rankResults(district string, results []RankedCrop) *Recommendation {
	ranked := make([]RankedCrop, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Profit > ranked[j].Profit
	})

	rec := &Recommendation{District: district, Ranked: ranked}
	if len(ranked) == 0 {
		return rec
	}
	rec.Top = ranked[0]
	rec.Safe = ranked[0]
	if len(ranked) > 1 {
		rec.Safe = ranked[1]
	}
	for _, c := range ranked {
		if safeCrops[c.Crop] {
			rec.Safe = c
			break
		}
	}
	return rec
}
