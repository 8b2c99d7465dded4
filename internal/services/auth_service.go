package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	stderrors "errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rupayx/wallet-service/internal/infrastructure/auth"
	"github.com/rupayx/wallet-service/internal/infrastructure/redis"
	"github.com/rupayx/wallet-service/internal/models"
	"github.com/rupayx/wallet-service/internal/notify"
	"github.com/rupayx/wallet-service/internal/repository"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeTTL        = 10 * time.Minute
	resendCooldown = 60 * time.Second
	sessionTTL     = time.Hour
	minPasswordLen = 6

	welcomeBonusTitle = "Welcome Bonus"
)

// signupBonus is credited to every new account and recorded as a matching
// Completed Buy transaction.
var signupBonus = decimal.NewFromInt(99)

// CodeDelivery reports how a verification code went out. When Delivered is
// false the code is surfaced in-app as a fallback.
type CodeDelivery struct {
	Code      string
	Delivered bool
}

type AuthService interface {
	SendCode(ctx context.Context, email string) (*CodeDelivery, error)
	VerifyRegistration(ctx context.Context, email, password, code, referredBy string) (string, *models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Profile(ctx context.Context, email string) (*models.User, error)
	AdminLogin(ctx context.Context, username, password string) (string, error)
	ChangeAdminPassword(ctx context.Context, oldPassword, newPassword string) error
}

type authService struct {
	userRepo     repository.UserRepository
	txRepo       repository.TransactionRepository
	settingsRepo repository.SettingsRepository
	redisClient  redis.RedisClient
	sender       notify.NotificationSender
	jwtSecret    string

	genCode func() string
}

func NewAuthService(
	userRepo repository.UserRepository,
	txRepo repository.TransactionRepository,
	settingsRepo repository.SettingsRepository,
	redisClient redis.RedisClient,
	sender notify.NotificationSender,
	jwtSecret string,
) *authService {
	return &authService{
		userRepo:     userRepo,
		txRepo:       txRepo,
		settingsRepo: settingsRepo,
		redisClient:  redisClient,
		sender:       sender,
		jwtSecret:    jwtSecret,
		genCode:      generateCode,
	}
}

// generateCode produces a 6-digit numeric one-time code.
func generateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand failing means the process is in serious trouble.
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

// generateReferralCode produces an 8-character upper-case code.
func generateReferralCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base32.StdEncoding.EncodeToString(b)[:8], nil
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", email)
}

func cooldownKey(email string) string {
	return fmt.Sprintf("otp:%s:cooldown", email)
}

func (s *authService) SendCode(ctx context.Context, email string) (*CodeDelivery, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "SendCode")
	defer span.End()

	if !strings.Contains(email, "@") {
		span.SetStatus(codes.Error, "invalid email")
		return nil, fmt.Errorf("%w: please enter a valid email", pkgerrors.ErrValidation)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !stderrors.Is(err, pkgerrors.ErrUserNotFound) {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: failed to check user existence", pkgerrors.ErrInternal)
	}
	if existing != nil {
		if existing.IsBanned {
			span.SetStatus(codes.Error, "account banned")
			return nil, pkgerrors.ErrAccountBanned
		}
		span.SetStatus(codes.Error, "user exists")
		return nil, pkgerrors.ErrUserExists
	}

	// Resending is gated by a wall-clock cooldown; the key's TTL is the
	// remaining wait.
	ok, err := s.redisClient.SetNX(ctx, cooldownKey(email), "1", resendCooldown)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: failed to arm resend cooldown", pkgerrors.ErrInternal)
	}
	if !ok {
		span.SetStatus(codes.Error, "cooldown active")
		return nil, pkgerrors.ErrCooldownActive
	}

	code := s.genCode()
	if err := s.redisClient.Set(ctx, otpKey(email), code, codeTTL); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: failed to store verification code", pkgerrors.ErrInternal)
	}

	delivery := &CodeDelivery{Code: code, Delivered: true}
	if err := s.sender.Send(ctx, email, code); err != nil {
		// Non-fatal: the caller shows the code in-app instead.
		slog.Warn("code delivery failed, falling back to in-app display", "email", email, "error", err)
		delivery.Delivered = false
	}

	slog.Info("verification code issued", "email", email, "delivered", delivery.Delivered)
	return delivery, nil
}

func (s *authService) VerifyRegistration(ctx context.Context, email, password, code, referredBy string) (string, *models.User, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "VerifyRegistration")
	defer span.End()

	if len(password) < minPasswordLen {
		span.SetStatus(codes.Error, "password too short")
		return "", nil, fmt.Errorf("%w: password must be at least %d characters", pkgerrors.ErrValidation, minPasswordLen)
	}

	stored, err := s.redisClient.Get(ctx, otpKey(email))
	if err != nil || stored == "" || stored != code {
		span.SetStatus(codes.Error, "code mismatch")
		return "", nil, pkgerrors.ErrInvalidCode
	}

	if referredBy != "" {
		if _, err := s.userRepo.GetByReferralCode(ctx, referredBy); err != nil {
			if stderrors.Is(err, pkgerrors.ErrUserNotFound) {
				span.SetStatus(codes.Error, "unknown referral code")
				return "", nil, fmt.Errorf("%w: unknown referral code", pkgerrors.ErrValidation)
			}
			span.RecordError(err)
			return "", nil, fmt.Errorf("%w: failed to resolve referral code", pkgerrors.ErrInternal)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return "", nil, fmt.Errorf("%w: failed to hash password", pkgerrors.ErrInternal)
	}

	referralCode, err := s.uniqueReferralCode(ctx)
	if err != nil {
		span.RecordError(err)
		return "", nil, fmt.Errorf("%w: failed to generate referral code", pkgerrors.ErrInternal)
	}

	user := &models.User{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Balance:      signupBonus,
		JoinedDate:   time.Now().UTC(),
		ReferralCode: referralCode,
		ReferredBy:   referredBy,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if stderrors.Is(err, pkgerrors.ErrUserExists) {
			span.SetStatus(codes.Error, "user exists")
			return "", nil, err
		}
		span.RecordError(err)
		return "", nil, fmt.Errorf("%w: failed to create user", pkgerrors.ErrInternal)
	}

	// The signup bonus shows up in the history as a settled Buy.
	bonusTx := &models.Transaction{
		ID:         newOrderID(),
		Type:       models.TypeBuy,
		Amount:     signupBonus,
		Commission: decimal.Zero,
		Date:       user.JoinedDate,
		Status:     models.StatusCompleted,
		UserEmail:  email,
		TaskTitle:  welcomeBonusTitle,
	}
	if err := s.txRepo.Create(ctx, bonusTx); err != nil {
		slog.Error("failed to record welcome bonus transaction", "email", email, "error", err)
	}

	s.redisClient.Del(ctx, otpKey(email))
	s.redisClient.Del(ctx, cooldownKey(email))

	token, err := s.issueToken(ctx, auth.RoleUser, email)
	if err != nil {
		return "", nil, err
	}

	slog.Info("user registered", "email", email, "uid", user.UID, "referred_by", referredBy)
	return token, user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		slog.Warn("login failed", "email", email, "error", err)
		return "", nil, pkgerrors.ErrInvalidCredentials
	}
	if user.IsBanned {
		span.SetStatus(codes.Error, "account banned")
		return "", nil, pkgerrors.ErrAccountBanned
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("invalid password", "email", email)
		return "", nil, pkgerrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, auth.RoleUser, email)
	if err != nil {
		return "", nil, err
	}

	slog.Info("user logged in", "email", email)
	return token, user, nil
}

func (s *authService) Profile(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, pkgerrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to load profile", pkgerrors.ErrInternal)
	}
	return user, nil
}

func (s *authService) AdminLogin(ctx context.Context, username, password string) (string, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "AdminLogin")
	defer span.End()

	creds, err := s.settingsRepo.GetAdminCredentials(ctx)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: failed to load admin credentials", pkgerrors.ErrInternal)
	}
	if username != creds.Username {
		return "", pkgerrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		slog.Warn("invalid admin password", "username", username)
		return "", pkgerrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, auth.RoleAdmin, username)
	if err != nil {
		return "", err
	}

	slog.Info("admin logged in", "username", username)
	return token, nil
}

func (s *authService) ChangeAdminPassword(ctx context.Context, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", pkgerrors.ErrValidation, minPasswordLen)
	}

	creds, err := s.settingsRepo.GetAdminCredentials(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to load admin credentials", pkgerrors.ErrInternal)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(oldPassword)); err != nil {
		return pkgerrors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: failed to hash password", pkgerrors.ErrInternal)
	}
	creds.PasswordHash = string(hash)
	if err := s.settingsRepo.SaveAdminCredentials(ctx, creds); err != nil {
		return fmt.Errorf("%w: failed to save admin credentials", pkgerrors.ErrInternal)
	}

	slog.Info("admin password changed", "username", creds.Username)
	return nil
}

func (s *authService) uniqueReferralCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}
		_, err = s.userRepo.GetByReferralCode(ctx, code)
		if stderrors.Is(err, pkgerrors.ErrUserNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		slog.Warn("referral code collision, regenerating", "code", code)
	}
	return "", fmt.Errorf("could not generate a unique referral code")
}

func (s *authService) issueToken(ctx context.Context, role, subject string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  time.Now().Add(sessionTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		slog.Error("failed to generate JWT", "subject", subject, "error", err)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.redisClient.Set(ctx, auth.TokenKey(role, subject), tokenString, sessionTTL); err != nil {
		slog.Error("failed to cache JWT", "subject", subject, "error", err)
	}
	return tokenString, nil
}
