package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
	"github.com/LipeSan/worklog-web-app/internal/auth"
	"github.com/LipeSan/worklog-web-app/internal/models"
	"github.com/LipeSan/worklog-web-app/internal/repository"
	"github.com/LipeSan/worklog-web-app/internal/validate"
)

const msgInvalidResetToken = "invalid or expired token"

// MailQueue accepts outgoing e-mail for later delivery.
type MailQueue interface {
	Enqueue(ctx context.Context, messages ...models.MailMessage) error
}

// AuthOptions tunes account creation and the reset flow.
type AuthOptions struct {
	BcryptCost  int
	DefaultRate decimal.Decimal
	AppURL      string
}

type AuthService struct {
	users    *repository.UserRepository
	resets   *repository.ResetTokenRepository
	tokens   *auth.TokenManager
	mail     MailQueue
	throttle *LoginThrottle
	opts     AuthOptions
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	users *repository.UserRepository,
	resets *repository.ResetTokenRepository,
	tokens *auth.TokenManager,
	mail MailQueue,
	throttle *LoginThrottle,
	opts AuthOptions,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		resets:   resets,
		tokens:   tokens,
		mail:     mail,
		throttle: throttle,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates an active account with the default hourly rate.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := validate.Registration(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflictError("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		Phone:        validate.NormalizeAustralianPhone(req.Phone),
		PasswordHash: string(hash),
		Rate:         s.opts.DefaultRate,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login checks credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("invalid data", "email and password are required")
	}

	email := normalizeEmail(req.Email)
	if s.throttle != nil {
		if blocked, retryAfter := s.throttle.Blocked(email); blocked {
			return nil, apperrors.NewTooManyRequestsError("too many failed login attempts, try again later", retryAfter)
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if apperrors.IsNotFound(err) {
		s.recordFailure(email)
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailure(email)
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorizedError("account is inactive")
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, req.Remember)
	if err != nil {
		return nil, err
	}
	if s.throttle != nil {
		s.throttle.Reset(email)
	}

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID), zap.Bool("remember", req.Remember))
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a session token to an active user id.
func (s *AuthService) Authenticate(ctx context.Context, token string) (int64, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return 0, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if apperrors.IsNotFound(err) {
		return 0, apperrors.NewUnauthorizedError("invalid token")
	}
	if err != nil {
		return 0, err
	}
	if !user.IsActive {
		return 0, apperrors.NewUnauthorizedError("account is inactive")
	}
	return user.ID, nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ForgotPassword issues a reset token and queues the reset e-mail. Unknown or
// inactive addresses succeed silently so the endpoint cannot be used to probe
// which e-mails are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	email := normalizeEmail(req.Email)
	if email == "" {
		return apperrors.NewValidationError("invalid data", "email is required")
	}
	if !validate.Email(email) {
		return apperrors.NewValidationError("invalid data", "invalid email")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if apperrors.IsNotFound(err) {
		s.logger.Info("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	if !user.IsActive {
		s.logger.Info("Password reset requested for inactive user", zap.Int64("user_id", user.ID))
		return nil
	}

	token, expiresAt, err := s.tokens.IssueReset(user.ID, user.Email)
	if err != nil {
		return err
	}
	if err := s.resets.Upsert(ctx, user.ID, token, expiresAt); err != nil {
		return err
	}

	if err := s.mail.Enqueue(ctx, s.resetMessage(user, token, expiresAt)); err != nil {
		return err
	}

	s.logger.Info("Password reset e-mail queued", zap.Int64("user_id", user.ID))
	return nil
}

// VerifyResetToken checks a reset token and returns the e-mail it was issued to.
func (s *AuthService) VerifyResetToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperrors.NewValidationError("invalid data", "token is required")
	}
	rec, claims, err := s.checkResetToken(ctx, token)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByID(ctx, rec.UserID)
	if err != nil {
		return "", err
	}
	if !user.IsActive {
		return "", apperrors.NewValidationError("invalid data", msgInvalidResetToken)
	}
	return claims.Email, nil
}

// ResetPassword replaces the password of the token's user and consumes the token.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if req.Token == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return apperrors.NewValidationError("invalid data", "token, new password and confirmation are required")
	}
	if req.NewPassword != req.ConfirmPassword {
		return apperrors.NewValidationError("invalid data", "passwords do not match")
	}
	if msg := validate.ResetPasswordStrength(req.NewPassword); msg != "" {
		return apperrors.NewValidationError("invalid data", msg)
	}

	rec, _, err := s.checkResetToken(ctx, req.Token)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, rec.UserID)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return apperrors.NewValidationError("invalid data", "account is inactive")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.opts.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.ResetPassword(ctx, user.ID, rec.ID, string(hash)); err != nil {
		return err
	}

	s.logger.Info("Password reset", zap.Int64("user_id", user.ID))
	return nil
}

func (s *AuthService) checkResetToken(ctx context.Context, token string) (*models.PasswordResetToken, *auth.Claims, error) {
	claims, err := s.tokens.VerifyReset(token)
	if err != nil {
		return nil, nil, apperrors.NewValidationError("invalid data", msgInvalidResetToken)
	}

	rec, err := s.resets.FindValid(ctx, token, s.now())
	if apperrors.IsNotFound(err) {
		return nil, nil, apperrors.NewValidationError("invalid data", msgInvalidResetToken)
	}
	if err != nil {
		return nil, nil, err
	}
	if rec.UserID != claims.UserID {
		return nil, nil, apperrors.NewValidationError("invalid data", msgInvalidResetToken)
	}
	return rec, claims, nil
}

func (s *AuthService) resetMessage(user *models.User, token string, expiresAt time.Time) models.MailMessage {
	link := strings.TrimRight(s.opts.AppURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	return models.MailMessage{
		Recipient: user.Email,
		Subject:   "Reset your password",
		Body: fmt.Sprintf(
			"Hi %s,\n\nWe received a request to reset your password. Open the link below to choose a new one:\n\n%s\n\nThe link expires %s. If you did not ask for this, ignore this e-mail.",
			user.FullName, link, humanize.RelTime(expiresAt, s.now(), "ago", "from now"),
		),
	}
}

func (s *AuthService) recordFailure(email string) {
	if s.throttle != nil {
		s.throttle.Fail(email)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
