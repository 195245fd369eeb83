// File: internal/disease/model.go
package disease

import (
	"strconv"
	"strings"
	"time"

	"krishipredict_backend/internal/common"
)

// Detection statuses that never produce a report.
const (
	StatusSafe       = "Safe"
	StatusSystemBusy = "System Busy"
)

// AlertWindow is how far back community alerts look.
const AlertWindow = 7 * 24 * time.Hour

// Report is one disease sighting saved from a detection.
type Report struct {
	common.BaseModel
	District    string    `gorm:"type:varchar(100);not null;index" json:"district"`
	Category    string    `gorm:"type:varchar(100)" json:"category"`
	DiseaseName string    `gorm:"type:varchar(200);not null;index" json:"disease_name"`
	RawLabel    string    `gorm:"type:varchar(255)" json:"raw_label"`
	Confidence  float64   `json:"confidence"`
	Date        time.Time `gorm:"not null;index" json:"date"`
}

// TableName specifies the table name for GORM.
func (Report) TableName() string {
	return "disease_reports"
}

// Alert is the number of recent reports of one disease.
type Alert struct {
	Disease string `json:"disease"`
	Count   int64  `json:"count"`
}

// ParseLabel splits a vision label such as "Tomato - Late Blight" into the
// category before the last hyphen and the disease name after it. A label
// without a hyphen is its own name.
func ParseLabel(label string) (category, name string) {
	idx := strings.LastIndex(label, "-")
	if idx < 0 {
		return "", strings.TrimSpace(label)
	}
	return strings.TrimSpace(label[:idx]), strings.TrimSpace(label[idx+1:])
}

// detection is the part of a vision response the backend reads.
type detection struct {
	Error       interface{} `json:"error"`
	Status      string      `json:"status"`
	DiseaseName string      `json:"disease_name"`
	Disease     string      `json:"disease"`
	Category    string      `json:"category"`
	Confidence  confidence  `json:"confidence"`
}

// confidence accepts a number or a numeric string. Anything else reads as 0.
type confidence float64

func (c *confidence) UnmarshalJSON(b []byte) error {
	f, err := strconv.ParseFloat(strings.Trim(string(b), `"`), 64)
	if err != nil {
		f = 0
	}
	*c = confidence(f)
	return nil
}

// ShouldAutoReport reports whether a detection describes a real sighting.
func (d detection) ShouldAutoReport() bool {
	return !truthy(d.Error) && d.Status != StatusSafe && d.Status != StatusSystemBusy
}

func (d detection) label() string {
	if d.DiseaseName != "" {
		return d.DiseaseName
	}
	return d.Disease
}

// toReport builds the report for district. An explicit category from the
// vision service replaces the parsed one; the name is always the text after
// the last hyphen so alerts group on the disease alone.
func (d detection) toReport(district string, now time.Time) *Report {
	raw := d.label()
	category, name := ParseLabel(raw)
	if c := strings.TrimSpace(d.Category); c != "" {
		category = c
	}
	return &Report{
		District:    district,
		Category:    category,
		DiseaseName: name,
		RawLabel:    raw,
		Confidence:  float64(d.Confidence),
		Date:        now,
	}
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}
