// File: internal/user/model.go
package user

import (
	"database/sql/driver"
	"strings"
	"time"

	"krishipredict_backend/internal/common"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Soil types a farmer can record for their land.
const (
	SoilAlluvial = "alluvial"
	SoilBlack    = "black"
	SoilRed      = "red"
	SoilLaterite = "laterite"
	SoilDesert   = "desert"
	SoilLoamy    = "loamy"
	SoilUnknown  = "unknown"
)

// Irrigation methods.
const (
	IrrigationRainfed  = "rainfed"
	IrrigationTubeWell = "tube_well"
	IrrigationCanal    = "canal"
	IrrigationDrip     = "drip"
	IrrigationUnknown  = "unknown"
)

const (
	DefaultName     = "Kisan Bhai"
	DefaultLanguage = "hi"
	DefaultCrop     = "wheat"
)

// CropList is a list of crop names. It maps to a text[] column on Postgres
// and to the same array literal stored as text elsewhere.
type CropList []string

// GormDBDataType picks the column type per dialect.
func (CropList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Value implements driver.Valuer.
func (c CropList) Value() (driver.Value, error) {
	return pq.StringArray(c).Value()
}

// Scan implements sql.Scanner.
func (c *CropList) Scan(src interface{}) error {
	return (*pq.StringArray)(c).Scan(src)
}

// Land describes the farmer's holding.
type Land struct {
	AreaAcres  float64 `gorm:"column:land_area_acres;not null;default:0" json:"area_acres"`
	SoilType   string  `gorm:"column:land_soil_type;type:varchar(20);not null" json:"soil_type"`
	Irrigation string  `gorm:"column:land_irrigation;type:varchar(20);not null" json:"irrigation"`
}

// User represents a farmer or trader account, keyed by phone.
type User struct {
	common.BaseModel
	Phone                string     `gorm:"type:varchar(15);uniqueIndex;not null" json:"phone"`
	Name                 string     `gorm:"type:varchar(100);not null" json:"name"`
	District             string     `gorm:"type:varchar(100);not null;index" json:"district"`
	State                string     `gorm:"type:varchar(100);not null" json:"state"`
	Language             string     `gorm:"type:varchar(10);not null" json:"language"`
	Role                 string     `gorm:"type:varchar(20);not null" json:"role"`
	Land                 Land       `gorm:"embedded" json:"land"`
	PreferredCrops       CropList   `json:"preferred_crops"`
	FCMToken             *string    `gorm:"type:text" json:"-"`
	NotificationsEnabled bool       `gorm:"not null" json:"notifications_enabled"`
	LastLoginAt          *time.Time `json:"last_login_at,omitempty"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// NewFarmer builds the record created on first login.
func NewFarmer(phone string) *User {
	return &User{
		Phone:                phone,
		Name:                 DefaultName,
		District:             common.DefaultDistrict,
		State:                common.DefaultState,
		Language:             DefaultLanguage,
		Role:                 common.RoleFarmer,
		Land:                 Land{SoilType: SoilUnknown, Irrigation: IrrigationUnknown},
		PreferredCrops:       CropList{DefaultCrop},
		NotificationsEnabled: true,
	}
}

// GetID, GetPhone and GetRole satisfy shared.TokenSubject.
func (u *User) GetID() uuid.UUID  { return u.ID }
func (u *User) GetPhone() string { return u.Phone }
func (u *User) GetRole() string  { return u.Role }

// NormalizePhone strips whitespace, dashes and an Indian country prefix so
// "+91 98765-43210" and "9876543210" identify the same account.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	p := b.String()
	if strings.HasPrefix(p, "+91") && len(p) == 13 {
		return p[3:]
	}
	return strings.TrimPrefix(p, "+")
}
