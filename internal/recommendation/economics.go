// File: internal/recommendation/economics.go
package recommendation

import (
	"math"

	"github.com/gosimple/slug"
)

// CropEconomics is the expected yield (quintal per acre) and input cost
// (rupees per acre) of a crop.
type CropEconomics struct {
	Yield float64 `json:"yield"`
	Cost  float64 `json:"cost"`
}

var cropEconomics = map[string]CropEconomics{
	"wheat":  {Yield: 20, Cost: 12000},
	"rice":   {Yield: 25, Cost: 15000},
	"garlic": {Yield: 40, Cost: 40000},
	"onion":  {Yield: 100, Cost: 25000},
	"potato": {Yield: 120, Cost: 30000},
	"tomato": {Yield: 150, Cost: 35000},
}

// fallbackEconomics applies to crops the ranker has no figures for.
var fallbackEconomics = CropEconomics{Yield: 20, Cost: 15000}

// CropKey canonicalizes a crop name ("  Wheat" and "wheat" are the same crop).
func CropKey(name string) string {
	return slug.Make(name)
}

// EconomicsFor returns the figures for crop and whether they are known.
func EconomicsFor(crop string) (CropEconomics, bool) {
	e, ok := cropEconomics[CropKey(crop)]
	if !ok {
		return fallbackEconomics, false
	}
	return e, true
}

// Profit is the expected profit per acre at price.
func Profit(crop string, price float64) float64 {
	e, _ := EconomicsFor(crop)
	return e.Yield*price - e.Cost
}

// ProfitRequest is the input of the profit simulator.
type ProfitRequest struct {
	Crop  string  `json:"crop" binding:"required"`
	Acres float64 `json:"acres" binding:"gt=0"`
	Price float64 `json:"price" binding:"gte=0"`
}

// ProfitEstimate is the profit simulator output for a whole holding.
type ProfitEstimate struct {
	Crop       string  `json:"crop"`
	Acres      float64 `json:"acres"`
	Price      float64 `json:"price"`
	TotalYield float64 `json:"total_yield"`
	Revenue    float64 `json:"revenue"`
	Cost       float64 `json:"cost"`
	NetProfit  float64 `json:"net_profit"`
	ROI        float64 `json:"roi_percent"`
}

// SimulateProfit estimates yield, revenue and profit for acres of crop sold
// at price. Unknown crops use the wheat figures.
func SimulateProfit(req ProfitRequest) ProfitEstimate {
	key := CropKey(req.Crop)
	e, ok := cropEconomics[key]
	if !ok {
		e = cropEconomics["wheat"]
	}
	totalYield := e.Yield * req.Acres
	revenue := totalYield * req.Price
	cost := e.Cost * req.Acres
	net := revenue - cost

	var roi float64
	if cost > 0 {
		roi = math.Round(net / cost * 100)
	}
	return ProfitEstimate{
		Crop:       key,
		Acres:      req.Acres,
		Price:      req.Price,
		TotalYield: totalYield,
		Revenue:    math.Round(revenue),
		Cost:       math.Round(cost),
		NetProfit:  math.Round(net),
		ROI:        roi,
	}
}

// Nutrient dose in kg per acre.
type nutrientDose struct {
	Urea float64
	DAP  float64
	MOP  float64
}

var fertilizerDoses = map[string]nutrientDose{
	"wheat":  {Urea: 110, DAP: 50, MOP: 30},
	"rice":   {Urea: 130, DAP: 60, MOP: 40},
	"potato": {Urea: 150, DAP: 100, MOP: 80},
	"onion":  {Urea: 100, DAP: 60, MOP: 50},
	"tomato": {Urea: 90, DAP: 60, MOP: 40},
	"garlic": {Urea: 100, DAP: 80, MOP: 40},
}

// Bag sizes (kg) and prices (rupees per bag).
const (
	ureaBagKg    = 45
	dapBagKg     = 50
	mopBagKg     = 50
	ureaBagPrice = 266
	dapBagPrice  = 1350
	mopBagPrice  = 1700
)

// FertilizerRequest is the input of the fertilizer calculator.
type FertilizerRequest struct {
	Crop  string  `json:"crop" binding:"required"`
	Acres float64 `json:"acres" binding:"gt=0"`
}

// FertilizerAmount is the quantity of one fertilizer.
type FertilizerAmount struct {
	Kg   float64 `json:"kg"`
	Bags float64 `json:"bags"`
}

// FertilizerPlan is the fertilizer calculator output.
type FertilizerPlan struct {
	Crop  string           `json:"crop"`
	Acres float64          `json:"acres"`
	Urea  FertilizerAmount `json:"urea"`
	DAP   FertilizerAmount `json:"dap"`
	MOP   FertilizerAmount `json:"mop"`
	Cost  float64          `json:"total_cost"`
}

// PlanFertilizer computes the urea, DAP and MOP needed for acres of crop.
// Unknown crops use the wheat dose.
func PlanFertilizer(req FertilizerRequest) FertilizerPlan {
	key := CropKey(req.Crop)
	dose, ok := fertilizerDoses[key]
	if !ok {
		dose = fertilizerDoses["wheat"]
	}

	urea := dose.Urea * req.Acres
	dap := dose.DAP * req.Acres
	mop := dose.MOP * req.Acres
	ureaBags := roundTenth(urea / ureaBagKg)
	dapBags := roundTenth(dap / dapBagKg)
	mopBags := roundTenth(mop / mopBagKg)

	return FertilizerPlan{
		Crop:  key,
		Acres: req.Acres,
		Urea:  FertilizerAmount{Kg: urea, Bags: ureaBags},
		DAP:   FertilizerAmount{Kg: dap, Bags: dapBags},
		MOP:   FertilizerAmount{Kg: mop, Bags: mopBags},
		Cost:  math.Round(ureaBags*ureaBagPrice + dapBags*dapBagPrice + mopBags*mopBagPrice),
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
