// File: internal/weather/districts.go
package weather

import "github.com/gosimple/slug"

// Coordinates locate a district headquarters.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

const defaultDistrictKey = "sehore"

// Madhya Pradesh districts served by the app.
var districtCoordinates = map[string]Coordinates{
	"sehore":      {23.20, 77.08},
	"bhopal":      {23.25, 77.41},
	"dewas":       {22.96, 76.05},
	"indore":      {22.71, 75.85},
	"ujjain":      {23.17, 75.78},
	"vidisha":     {23.52, 77.81},
	"raisen":      {23.33, 77.79},
	"hoshangabad": {22.75, 77.72},
	"harda":       {22.33, 76.99},
	"betul":       {21.90, 77.90},
}

// LookupDistrict resolves a district name to its table key and coordinates.
// Unknown or empty names resolve to Sehore.
func LookupDistrict(district string) (string, Coordinates) {
	key := slug.Make(district)
	if c, ok := districtCoordinates[key]; ok {
		return key, c
	}
	return defaultDistrictKey, districtCoordinates[defaultDistrictKey]
}
