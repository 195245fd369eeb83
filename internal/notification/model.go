// File: internal/notification/model.go
package notification

import (
	"strings"
	"time"

	"krishipredict_backend/internal/common"
)

// NotificationType is the severity shown next to a notice.
type NotificationType string

const (
	TypeInfo    NotificationType = "info"
	TypeWarning NotificationType = "warning"
	TypeSuccess NotificationType = "success"
	TypeAlert   NotificationType = "alert"
)

const (
	// TargetAll addresses every district.
	TargetAll = "All"
	// AdminTitle heads broadcasts sent without a title.
	AdminTitle = "📢 Admin Notice"
	// FeedLimit caps the notification feed.
	FeedLimit = 20
)

// Notification is a notice shown in the app feed until it expires.
type Notification struct {
	common.BaseModel
	Title          string           `gorm:"type:varchar(200);not null" json:"title"`
	Message        string           `gorm:"type:text;not null" json:"message"`
	Type           NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	TargetDistrict string           `gorm:"type:varchar(100);not null;index" json:"targetDistrict"`
	Date           time.Time        `gorm:"not null;index" json:"date"`
	ExpiresAt      time.Time        `gorm:"not null;index" json:"expiresAt"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

// BroadcastRequest is the admin broadcast body. Only the message is required.
type BroadcastRequest struct {
	Message        string `json:"message" binding:"required,max=2000"`
	Title          string `json:"title" binding:"max=200"`
	Type           string `json:"type" binding:"omitempty,oneof=info warning success alert"`
	TargetDistrict string `json:"target_district" binding:"max=100"`
}

// toNotification applies the defaults: admin title, info type, all
// districts, and expiry ttl after now.
func (r BroadcastRequest) toNotification(now time.Time, ttl time.Duration) *Notification {
	n := &Notification{
		Title:          strings.TrimSpace(r.Title),
		Message:        strings.TrimSpace(r.Message),
		Type:           NotificationType(r.Type),
		TargetDistrict: strings.TrimSpace(r.TargetDistrict),
		Date:           now.UTC(),
		ExpiresAt:      now.UTC().Add(ttl),
	}
	if n.Title == "" {
		n.Title = AdminTitle
	}
	if n.Type == "" {
		n.Type = TypeInfo
	}
	if n.TargetDistrict == "" || strings.EqualFold(n.TargetDistrict, TargetAll) {
		n.TargetDistrict = TargetAll
	}
	return n
}
