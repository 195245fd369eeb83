// File: internal/auth/model.go
package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"krishipredict_backend/internal/shared"
	"krishipredict_backend/internal/user"
)

// LoginRequest starts the OTP flow for a phone.
type LoginRequest struct {
	Phone string `json:"phone" binding:"required,phone"`
}

// LoginResponse mirrors what the mobile client expects after login.
type LoginResponse struct {
	Status    string     `json:"status"`
	User      *user.User `json:"user"`
	IsNewUser bool       `json:"isNewUser"`
	Message   string     `json:"message"`
}

// VerifyOTPRequest completes the OTP flow.
type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required,phone"`
	OTP   string `json:"otp" binding:"required,min=4,max=6"`
}

// VerifyOTPResponse carries the session token.
type VerifyOTPResponse struct {
	Status string               `json:"status"`
	User   *user.User           `json:"user"`
	Token  shared.TokenResponse `json:"token"`
}

// CropSelection accepts either a single crop name or a list of names and
// normalizes both into a list once, at decode time.
type CropSelection struct {
	crops []string
	set   bool
}

// NewCropSelection builds a selection as if the client sent the list.
func NewCropSelection(crops ...string) CropSelection {
	return CropSelection{crops: normalizeCrops(crops), set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CropSelection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = CropSelection{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		// An empty string means "not provided".
		if strings.TrimSpace(single) == "" {
			*c = CropSelection{}
			return nil
		}
		*c = CropSelection{crops: normalizeCrops([]string{single}), set: true}
		return nil
	case len(data) > 0 && data[0] == '[':
		var many []string
		if err := json.Unmarshal(data, &many); err != nil {
			return fmt.Errorf("crop must be a string or a list of strings: %w", err)
		}
		*c = CropSelection{crops: normalizeCrops(many), set: true}
		return nil
	default:
		return fmt.Errorf("crop must be a string or a list of strings")
	}
}

// MarshalJSON renders the normalized list.
func (c CropSelection) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte("null"), nil
	}
	return json.Marshal(c.crops)
}

// IsSet reports whether the client supplied the field.
func (c CropSelection) IsSet() bool { return c.set }

// Crops returns the normalized list.
func (c CropSelection) Crops() []string { return c.crops }

func normalizeCrops(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, raw := range in {
		crop := strings.ToLower(strings.TrimSpace(raw))
		if crop == "" || seen[crop] {
			continue
		}
		seen[crop] = true
		out = append(out, crop)
	}
	return out
}

// LandUpdate carries optional land fields.
type LandUpdate struct {
	AreaAcres  *float64 `json:"area_acres" binding:"omitempty,gte=0"`
	SoilType   *string  `json:"soil_type" binding:"omitempty,oneof=alluvial black red laterite desert loamy unknown"`
	Irrigation *string  `json:"irrigation" binding:"omitempty,oneof=rainfed tube_well canal drip unknown"`
}

// UpdateProfileRequest patches the profile of the user owning Phone.
// Absent or empty fields are left unchanged.
type UpdateProfileRequest struct {
	Phone                string        `json:"phone" binding:"required,phone"`
	Name                 *string       `json:"name" binding:"omitempty,max=100"`
	District             *string       `json:"district" binding:"omitempty,max=100"`
	State                *string       `json:"state" binding:"omitempty,max=100"`
	Crop                 CropSelection `json:"crop"`
	Language             *string       `json:"language" binding:"omitempty,min=2,max=10"`
	Role                 *string       `json:"role" binding:"omitempty,oneof=farmer trader"`
	Land                 *LandUpdate   `json:"land"`
	FCMToken             *string       `json:"fcm_token" binding:"omitempty,max=4096"`
	NotificationsEnabled *bool         `json:"notifications_enabled"`
}

// UpdateProfileResponse is returned after a successful update.
type UpdateProfileResponse struct {
	Status string     `json:"status"`
	User   *user.User `json:"user"`
}
