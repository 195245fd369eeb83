// File: internal/liveprice/model.go
package liveprice

import (
	"strings"
	"time"

	"krishipredict_backend/internal/common"
)

const (
	// RecentWindow bounds the board to prices reported in the last day.
	RecentWindow = 24 * time.Hour
	RecentLimit  = 10
)

// LivePrice is a mandi price reported by a farmer.
type LivePrice struct {
	common.BaseModel
	District     string    `gorm:"type:varchar(100);not null;index" json:"district"`
	Mandi        string    `gorm:"type:varchar(150)" json:"mandi"`
	Crop         string    `gorm:"type:varchar(100);not null" json:"crop"`
	Price        float64   `gorm:"not null" json:"price"`
	ReporterName string    `gorm:"type:varchar(100)" json:"reporterName"`
	Time         time.Time `gorm:"column:reported_at;not null;index" json:"time"`
}

// TableName specifies the table name for GORM.
func (LivePrice) TableName() string {
	return "live_prices"
}

// ReportRequest is the body of POST /report/add.
type ReportRequest struct {
	District     string   `json:"district" binding:"max=100"`
	Mandi        string   `json:"mandi" binding:"max=150"`
	Crop         string   `json:"crop" binding:"required,max=100"`
	Price        *float64 `json:"price" binding:"required,gt=0"`
	ReporterName string   `json:"reporterName" binding:"max=100"`
}

// ToLivePrice stamps the report with the time it was received. An empty
// district is recorded as defaultDistrict.
func (r ReportRequest) ToLivePrice(now time.Time, defaultDistrict string) *LivePrice {
	district := strings.TrimSpace(r.District)
	if district == "" {
		district = defaultDistrict
	}
	return &LivePrice{
		District:     district,
		Mandi:        strings.TrimSpace(r.Mandi),
		Crop:         strings.TrimSpace(r.Crop),
		Price:        *r.Price,
		ReporterName: strings.TrimSpace(r.ReporterName),
		Time:         now.UTC(),
	}
}
