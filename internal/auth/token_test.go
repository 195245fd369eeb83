package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/user"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(&config.Config{
		JWTSecretKey:                "test-secret",
		JWTAccessTokenExpiryMinutes: 15 * time.Minute,
	}, zap.NewNop())

	farmer := user.NewFarmer("9876543210")
	token, expiresAt, err := svc.GenerateAccessToken(farmer)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", claims.Phone)
	assert.Equal(t, "farmer", claims.Role)

	other := NewJWTService(&config.Config{JWTSecretKey: "another", JWTAccessTokenExpiryMinutes: time.Minute}, zap.NewNop())
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RequiresSecret(t *testing.T) {
	svc := NewJWTService(&config.Config{}, zap.NewNop())
	_, _, err := svc.GenerateAccessToken(user.NewFarmer("9876543210"))
	assert.Error(t, err)
}

func TestInMemoryOTPStore(t *testing.T) {
	store := NewInMemoryOTPStore(time.Minute)

	assert.False(t, store.Verify("9876543210", "1234"), "nothing issued yet")

	store.Put("9876543210", "1234")
	assert.False(t, store.Verify("9876543210", "0000"))
	assert.True(t, store.Verify("9876543210", "1234"))
	assert.False(t, store.Verify("9876543210", "1234"), "consumed")

	store.Put("9876543210", "5678")
	for i := 0; i < maxOTPAttempts; i++ {
		store.Verify("9876543210", "0000")
	}
	assert.False(t, store.Verify("9876543210", "5678"), "locked after too many attempts")
}

func TestFast2SMSSender(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	const gateway = "https://sms.example.test/dev/bulkV2"
	cfg := &config.Config{SMSAPIURL: gateway, SMSAPIKey: "k3y", SMSTimeout: time.Second}
	sender := NewFast2SMSSender(cfg, zap.NewNop())

	httpmock.RegisterResponder(http.MethodGet, gateway, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		assert.Equal(t, "k3y", q.Get("authorization"))
		assert.Equal(t, "4321", q.Get("variables_values"))
		assert.Equal(t, "otp", q.Get("route"))
		assert.Equal(t, "9876543210", q.Get("numbers"))
		return httpmock.NewStringResponse(http.StatusOK, `{"return":true,"message":["sent"]}`), nil
	})
	require.NoError(t, sender.SendOTP(context.Background(), "9876543210", "4321"))

	httpmock.RegisterResponder(http.MethodGet, gateway,
		httpmock.NewStringResponder(http.StatusOK, `{"return":false,"message":"Invalid Numbers"}`))
	err := sender.SendOTP(context.Background(), "9876543210", "4321")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid Numbers")
	assert.NotContains(t, err.Error(), "k3y")
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "******3210", maskPhone("9876543210"))
	assert.Equal(t, "123", maskPhone("123"))
}
