// File: internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"krishipredict_backend/internal/activity"
	"krishipredict_backend/internal/common"
	"krishipredict_backend/internal/config"
	"krishipredict_backend/internal/metrics"
	"krishipredict_backend/internal/platform/crypto"
	"krishipredict_backend/internal/shared"
	"krishipredict_backend/internal/user"

	"go.uber.org/zap"
)

// Service covers phone login and profile management.
type Service interface {
	Login(ctx context.Context, phone string) (*LoginResponse, error)
	VerifyOTP(ctx context.Context, phone, code string) (*VerifyOTPResponse, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*user.User, error)
	GetProfile(ctx context.Context, phone string) (*user.User, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo     user.Repository
	otps     OTPStore
	sms      SMSSender
	tokens   shared.TokenService
	activity activity.Recorder
	cfg      *config.Config
	logger   *zap.Logger
}

// NewService creates the auth service.
func NewService(
	repo user.Repository,
	otps OTPStore,
	sms SMSSender,
	tokens shared.TokenService,
	recorder activity.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		repo:     repo,
		otps:     otps,
		sms:      sms,
		tokens:   tokens,
		activity: recorder,
		cfg:      cfg,
		logger:   logger.Named("AuthService"),
	}
}

// Login finds or creates the user for phone and issues an OTP. Without an
// SMS key the configured test code is issued and nothing is sent.
func (s *ServiceImplementation) Login(ctx context.Context, phone string) (*LoginResponse, error) {
	phone = user.NormalizePhone(phone)
	if phone == "" {
		return nil, common.ErrBadRequest.WithMessage("Phone required")
	}

	usr, isNew, err := s.findOrCreate(ctx, phone)
	if err != nil {
		return nil, err
	}

	code := s.cfg.OTPTestCode
	mode := "test"
	if s.cfg.SMSEnabled() {
		code, err = crypto.GenerateNumericCode(4)
		if err != nil {
			return nil, fmt.Errorf("generating otp: %w", err)
		}
		if err := s.sms.SendOTP(ctx, phone, code); err != nil {
			s.logger.Error("Failed to send OTP", zap.String("phone", maskPhone(phone)), zap.Error(err))
			return nil, common.ErrInternalServer.WithMessage("Failed to send OTP. Please try again.")
		}
		mode = "sms"
	}
	s.otps.Put(phone, code)
	metrics.OTPSent.WithLabelValues(mode).Inc()

	if isNew {
		s.activity.Record(ctx, activity.KindUserRegistered,
			fmt.Sprintf("New farmer registered from %s", usr.District))
	}

	s.logger.Info("OTP issued", zap.String("phone", maskPhone(phone)), zap.Bool("new_user", isNew), zap.String("mode", mode))
	return &LoginResponse{
		Status:    "success",
		User:      usr,
		IsNewUser: isNew,
		Message:   "OTP Sent",
	}, nil
}

func (s *ServiceImplementation) findOrCreate(ctx context.Context, phone string) (*user.User, bool, error) {
	usr, err := s.repo.FindByPhone(ctx, phone)
	if err == nil {
		return usr, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}

	usr = user.NewFarmer(phone)
	usr.District = s.cfg.DistrictOr("")
	usr.State = s.cfg.StateOr("")
	if err := s.repo.Create(ctx, usr); err != nil {
		// A concurrent login for the same phone won the insert.
		if errors.Is(err, common.ErrConflict) {
			existing, findErr := s.repo.FindByPhone(ctx, phone)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return usr, true, nil
}

// VerifyOTP checks the code issued by Login and returns a session token.
func (s *ServiceImplementation) VerifyOTP(ctx context.Context, phone, code string) (*VerifyOTPResponse, error) {
	phone = user.NormalizePhone(phone)
	if !s.otps.Verify(phone, strings.TrimSpace(code)) {
		return nil, common.ErrUnauthorized.WithMessage("Invalid or expired OTP")
	}

	usr, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	usr.LastLoginAt = &now
	if err := s.repo.Update(ctx, usr); err != nil {
		s.logger.Warn("Failed to record last login", zap.Error(err))
	}

	tokenString, expiresAt, err := s.tokens.GenerateAccessToken(usr)
	if err != nil {
		return nil, err
	}
	return &VerifyOTPResponse{
		Status: "success",
		User:   usr,
		Token: shared.TokenResponse{
			AccessToken: tokenString,
			ExpiresAt:   expiresAt,
			TokenType:   common.AuthorizationTypeBearer,
		},
	}, nil
}

// UpdateProfile applies the non-empty fields of req to the user owning req.Phone.
func (s *ServiceImplementation) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*user.User, error) {
	usr, err := s.repo.FindByPhone(ctx, user.NormalizePhone(req.Phone))
	if err != nil {
		return nil, err
	}

	setIfNotEmpty(&usr.Name, req.Name)
	setIfNotEmpty(&usr.District, req.District)
	setIfNotEmpty(&usr.State, req.State)
	setIfNotEmpty(&usr.Language, req.Language)
	setIfNotEmpty(&usr.Role, req.Role)
	if req.Crop.IsSet() {
		usr.PreferredCrops = user.CropList(req.Crop.Crops())
	}
	if req.Land != nil {
		if req.Land.AreaAcres != nil {
			usr.Land.AreaAcres = *req.Land.AreaAcres
		}
		setIfNotEmpty(&usr.Land.SoilType, req.Land.SoilType)
		setIfNotEmpty(&usr.Land.Irrigation, req.Land.Irrigation)
	}
	if req.FCMToken != nil {
		token := strings.TrimSpace(*req.FCMToken)
		if token == "" {
			usr.FCMToken = nil
		} else {
			usr.FCMToken = &token
		}
	}
	if req.NotificationsEnabled != nil {
		usr.NotificationsEnabled = *req.NotificationsEnabled
	}

	if err := s.repo.Update(ctx, usr); err != nil {
		return nil, err
	}
	return usr, nil
}

// GetProfile returns the user owning phone.
func (s *ServiceImplementation) GetProfile(ctx context.Context, phone string) (*user.User, error) {
	return s.repo.FindByPhone(ctx, user.NormalizePhone(phone))
}

func setIfNotEmpty(dst *string, v *string) {
	if v == nil {
		return
	}
	if trimmed := strings.TrimSpace(*v); trimmed != "" {
		*dst = trimmed
	}
}
