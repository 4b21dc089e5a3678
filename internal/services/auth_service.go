package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sihur-medellin/sihur/internal/models"
)

// MensajeRecuperacion is returned by RequestPasswordReset whether or not the
// identifier belongs to an account.
const MensajeRecuperacion = "Si el correo electrónico está registrado, se ha enviado un enlace de restablecimiento."

// Claims are the JWT claims issued at login.
type Claims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// HasRole reports whether the claims carry one of roles.
func (c *Claims) HasRole(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// AuthConfig groups the token and hashing parameters of AuthService.
type AuthConfig struct {
	Secret      []byte
	SessionTTL  time.Duration
	RememberTTL time.Duration
	ResetTTL    time.Duration
	FrontendURL string
	BcryptCost  int
}

// AuthService verifies credentials and manages passwords and session tokens.
type AuthService interface {
	// Login returns a signed token for valid credentials, or
	// ErrInvalidCredentials without saying which part was wrong.
	Login(ctx context.Context, req models.LoginRequest, remoteIP string) (string, error)
	// VerifyToken returns the claims of a valid token or ErrUnauthorized.
	VerifyToken(token string) (*Claims, error)
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	// RequestPasswordReset always returns MensajeRecuperacion unless storage fails.
	RequestPasswordReset(ctx context.Context, identifier string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	db       *gorm.DB
	cfg      AuthConfig
	captcha  CaptchaVerifier
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time

	// dummyHash is compared against when the username is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

// NewAuthService builds an AuthService. captcha may be nil to skip
// verification; notifier may be nil to only log reset links.
func NewAuthService(db *gorm.DB, cfg AuthConfig, captcha CaptchaVerifier, notifier Notifier, logger *zap.Logger) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.RememberTTL == 0 {
		cfg.RememberTTL = 7 * 24 * time.Hour
	}
	if cfg.ResetTTL == 0 {
		cfg.ResetTTL = time.Hour
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("sihur-dummy-password"), cfg.BcryptCost)

	return &authService{
		db:        db,
		cfg:       cfg,
		captcha:   captcha,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// HashPassword hashes a password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", validationError("la contraseña no puede superar 72 bytes")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest, remoteIP string) (string, error) {
	if s.captcha != nil {
		if err := s.captcha.Verify(ctx, req.CaptchaToken, remoteIP); err != nil {
			return "", err
		}
	}

	var user models.Usuario
	err := s.db.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", storageError("find user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return "", ErrInvalidCredentials
	}

	ttl := s.cfg.SessionTTL
	if req.RememberMe {
		ttl = s.cfg.RememberTTL
	}
	return s.issueToken(user, ttl)
}

func (s *authService) issueToken(user models.Usuario, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *authService) VerifyToken(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrUnauthorized
	}
	keyFunc := func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	if newPassword == "" {
		return validationError("la nueva contraseña es obligatoria")
	}
	db := s.db.WithContext(ctx)

	var user models.Usuario
	if err := db.First(&user, userID).Error; err != nil {
		return storageError("find user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)) != nil {
		return ErrInvalidCurrentPassword
	}

	hash, err := HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := db.Model(&user).Update("password", hash).Error; err != nil {
		return storageError("update password", err)
	}
	s.logger.Info("password changed", zap.Uint("user_id", user.ID))
	return nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, identifier string) (string, error) {
	if identifier == "" {
		return MensajeRecuperacion, nil
	}
	db := s.db.WithContext(ctx)

	var user models.Usuario
	err := db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Debug("password reset requested for unknown identifier")
		return MensajeRecuperacion, nil
	}
	if err != nil {
		return "", storageError("find user", err)
	}

	token, err := newResetToken()
	if err != nil {
		return "", err
	}
	digest := hashResetToken(token)
	expires := s.now().Add(s.cfg.ResetTTL).UTC()

	err = db.Model(&user).Updates(map[string]any{
		"reset_token":            digest,
		"reset_token_expires_at": expires,
	}).Error
	if err != nil {
		return "", storageError("store reset token", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.cfg.FrontendURL, token)
	if err := s.notifier.SendPasswordReset(ctx, user, link); err != nil {
		s.logger.Error("failed to deliver password reset link",
			zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return MensajeRecuperacion, nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidOrExpiredToken
	}
	if newPassword == "" {
		return validationError("la nueva contraseña es obligatoria")
	}
	db := s.db.WithContext(ctx)

	var user models.Usuario
	err := db.Where("reset_token = ?", hashResetToken(token)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidOrExpiredToken
	}
	if err != nil {
		return storageError("find reset token", err)
	}
	if user.ResetTokenExpiresAt == nil || user.ResetTokenExpiresAt.Before(s.now()) {
		return ErrInvalidOrExpiredToken
	}

	hash, err := HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	err = db.Model(&user).Updates(map[string]any{
		"password":               hash,
		"reset_token":            nil,
		"reset_token_expires_at": nil,
	}).Error
	if err != nil {
		return storageError("reset password", err)
	}
	s.logger.Info("password reset", zap.Uint("user_id", user.ID))
	return nil
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// hashResetToken keeps only a digest of the token in the database.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
