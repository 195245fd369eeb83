package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"krishipredict_backend/internal/activity"
	"krishipredict_backend/internal/common"
	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/platform/database"
	"krishipredict_backend/internal/shared"
	"krishipredict_backend/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) SendOTP(ctx context.Context, phone, code string) error {
	args := m.Called(ctx, phone, code)
	return args.Error(0)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(subject shared.TokenSubject) (string, time.Time, error) {
	args := m.Called(subject)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*shared.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Claims), args.Error(1)
}

type serviceFixture struct {
	svc      *ServiceImplementation
	repo     user.Repository
	otps     *InMemoryOTPStore
	sms      *MockSMSSender
	tokens   *MockTokenService
	activity activity.Recorder
	cfg      *config.Config
}

func newServiceFixture(t *testing.T, smsKey string) *serviceFixture {
	t.Helper()
	db, err := database.OpenInMemory(&user.User{}, &activity.Entry{})
	require.NoError(t, err)

	cfg := &config.Config{
		OTPTestCode:     "1234",
		SMSAPIKey:       smsKey,
		DefaultDistrict: "Sehore",
		DefaultState:    "Madhya Pradesh",
	}
	f := &serviceFixture{
		repo:     user.NewGORMRepository(db),
		otps:     NewInMemoryOTPStore(time.Minute),
		sms:      new(MockSMSSender),
		tokens:   new(MockTokenService),
		activity: activity.NewGORMRecorder(db, zap.NewNop()),
		cfg:      cfg,
	}
	f.svc = NewService(f.repo, f.otps, f.sms, f.tokens, f.activity, cfg, zap.NewNop())
	return f
}

func TestLogin_NewUserGetsDefaultsAndTestCode(t *testing.T) {
	f := newServiceFixture(t, "")
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, "+91 98765 43210")
	require.NoError(t, err)

	assert.Equal(t, "success", resp.Status)
	assert.True(t, resp.IsNewUser)
	assert.Equal(t, "OTP Sent", resp.Message)
	assert.Equal(t, "9876543210", resp.User.Phone)
	assert.Equal(t, "Kisan Bhai", resp.User.Name)
	assert.Equal(t, "Sehore", resp.User.District)
	assert.Equal(t, common.RoleFarmer, resp.User.Role)
	assert.Equal(t, user.CropList{"wheat"}, resp.User.PreferredCrops)
	assert.True(t, resp.User.NotificationsEnabled)

	// No SMS key: nothing is sent and the test code verifies.
	f.sms.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, f.otps.Verify("9876543210", "1234"))

	entries, err := f.activity.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activity.KindUserRegistered, entries[0].Kind)
}

func TestLogin_ExistingUserIsNotRecreated(t *testing.T) {
	f := newServiceFixture(t, "")
	ctx := context.Background()

	first, err := f.svc.Login(ctx, "9876543210")
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, "9876543210")
	require.NoError(t, err)

	assert.False(t, second.IsNewUser)
	assert.Equal(t, first.User.ID, second.User.ID)
	count, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestLogin_SendsGeneratedCodeWhenSMSConfigured(t *testing.T) {
	f := newServiceFixture(t, "key")
	var sent string
	f.sms.On("SendOTP", mock.Anything, "9876543210", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sent = args.String(2) }).
		Return(nil).Once()

	_, err := f.svc.Login(context.Background(), "9876543210")
	require.NoError(t, err)

	f.sms.AssertExpectations(t)
	require.Len(t, sent, 4)
	assert.True(t, f.otps.Verify("9876543210", sent))
}

func TestLogin_SMSFailureIsServerError(t *testing.T) {
	f := newServiceFixture(t, "key")
	f.sms.On("SendOTP", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("gateway down")).Once()

	_, err := f.svc.Login(context.Background(), "9876543210")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInternalServer)
}

func TestVerifyOTP(t *testing.T) {
	f := newServiceFixture(t, "")
	ctx := context.Background()
	_, err := f.svc.Login(ctx, "9876543210")
	require.NoError(t, err)

	expires := time.Now().Add(time.Hour)
	f.tokens.On("GenerateAccessToken", mock.AnythingOfType("*user.User")).Return("signed", expires, nil).Once()

	_, err = f.svc.VerifyOTP(ctx, "9876543210", "9999")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	resp, err := f.svc.VerifyOTP(ctx, "9876543210", "1234")
	require.NoError(t, err)
	assert.Equal(t, "signed", resp.Token.AccessToken)
	assert.Equal(t, common.AuthorizationTypeBearer, resp.Token.TokenType)
	require.NotNil(t, resp.User.LastLoginAt)

	// Codes are single use.
	_, err = f.svc.VerifyOTP(ctx, "9876543210", "1234")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	f.tokens.AssertExpectations(t)
}

func TestUpdateProfile(t *testing.T) {
	f := newServiceFixture(t, "")
	ctx := context.Background()
	_, err := f.svc.Login(ctx, "9876543210")
	require.NoError(t, err)

	name := "Ramesh"
	blank := "   "
	area := 4.5
	soil := user.SoilBlack
	token := "fcm-token"
	off := false
	updated, err := f.svc.UpdateProfile(ctx, UpdateProfileRequest{
		Phone:                "9876543210",
		Name:                 &name,
		District:             &blank,
		Crop:                 NewCropSelection("Soybean", " wheat ", "soybean"),
		Land:                 &LandUpdate{AreaAcres: &area, SoilType: &soil},
		FCMToken:             &token,
		NotificationsEnabled: &off,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ramesh", updated.Name)
	assert.Equal(t, "Sehore", updated.District, "blank values are ignored")
	assert.Equal(t, user.CropList{"soybean", "wheat"}, updated.PreferredCrops)
	assert.Equal(t, 4.5, updated.Land.AreaAcres)
	assert.Equal(t, user.SoilBlack, updated.Land.SoilType)
	assert.Equal(t, user.IrrigationUnknown, updated.Land.Irrigation)
	require.NotNil(t, updated.FCMToken)
	assert.False(t, updated.NotificationsEnabled)

	stored, err := f.svc.GetProfile(ctx, "+919876543210")
	require.NoError(t, err)
	assert.Equal(t, "Ramesh", stored.Name)
	assert.Equal(t, user.CropList{"soybean", "wheat"}, stored.PreferredCrops)
}

func TestUpdateProfile_UnknownPhone(t *testing.T) {
	f := newServiceFixture(t, "")
	_, err := f.svc.UpdateProfile(context.Background(), UpdateProfileRequest{Phone: "9000000000"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
