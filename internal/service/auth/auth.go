package auth

import (
	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"Galeguia/pkg/logger"
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type profileRepo interface {
	CreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error)
	ProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	ProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Profile, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
}

type tokenRepo interface {
	Create(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	ByPrimaryKey(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	DeleteUserTokens(ctx context.Context, userID uuid.UUID) error
}

type AuthService struct {
	log         logger.Log
	jwtManager  *JWTManager
	profileRepo profileRepo
	tokenRepo   tokenRepo
}

func NewAuthService(l logger.Log, manager *JWTManager, pRepo profileRepo, tRepo tokenRepo) *AuthService {
	return &AuthService{
		log:         l,
		jwtManager:  manager,
		profileRepo: pRepo,
		tokenRepo:   tRepo,
	}
}

func (u *AuthService) SignUp(ctx context.Context, email, password, username string) (*models.Profile, error) {
	if len(password) < 6 || len(password) > 72 {
		return nil, app_errors.ErrIncorrectPassword
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	profile := models.Profile{
		Email:    email,
		Username: username,
		Password: hashed,
	}
	return u.profileRepo.CreateProfile(ctx, profile)
}

func (u *AuthService) SignIn(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	profile, err := u.profileRepo.ProfileByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}

	if !checkPasswordHash(password, profile.Password) {
		return "", "", app_errors.ErrIncorrectPassword
	}

	tokenPair, err := u.jwtManager.GenerateTokenPair(profile.ID)
	if err != nil {
		return "", "", err
	}

	if err = u.tokenRepo.DeleteUserTokens(ctx, profile.ID); err != nil {
		return "", "", err
	}
	if _, err = u.tokenRepo.Create(ctx, profile.ID, tokenPair.RefreshToken); err != nil {
		return "", "", err
	}

	return tokenPair.AccessToken.Raw, tokenPair.RefreshToken.Raw, nil
}

// SignOut revokes every refresh token of the user.
func (u *AuthService) SignOut(ctx context.Context, userID uuid.UUID) error {
	return u.tokenRepo.DeleteUserTokens(ctx, userID)
}

func (u *AuthService) RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error) {
	curToken, err := u.jwtManager.Parse(token)
	if err != nil {
		return nil, err
	}
	if !u.jwtManager.TokenType(curToken, RefreshTokenType) {
		return nil, app_errors.ErrTokenNotFound
	}
	userIDStr, err := curToken.Claims.GetSubject()
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}
	tokenRecord, err := u.tokenRepo.ByPrimaryKey(ctx, userID, curToken)
	if err != nil {
		return nil, err
	}
	profile, err := u.profileRepo.ProfileByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tokenRecord.ExpiresAt.Before(time.Now()) {
		return nil, app_errors.ErrTokenExpired
	}
	tokenPair, err := u.jwtManager.GenerateTokenPair(profile.ID)
	if err != nil {
		return nil, err
	}
	if err := u.tokenRepo.DeleteUserTokens(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := u.tokenRepo.Create(ctx, profile.ID, tokenPair.RefreshToken); err != nil {
		return nil, err
	}
	return tokenPair, nil
}

func (u *AuthService) ParseToken(ctx context.Context, token string) (*jwt.Token, error) {
	return u.jwtManager.Parse(token)
}

func (u *AuthService) IsAccessToken(ctx context.Context, token *jwt.Token) bool {
	return u.jwtManager.TokenType(token, AccessTokenType)
}

func (u *AuthService) AccessClaims(ctx context.Context, token string) (userID uuid.UUID, err error) {
	claims, err := u.jwtManager.AccessClaims(token)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

func (u *AuthService) Profile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return u.profileRepo.ProfileByID(ctx, id)
}

func (u *AuthService) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Profile, error) {
	return u.profileRepo.UpdateProfile(ctx, id, upd)
}

// ResetPassword issues a short-lived reset token for the account. Delivering
// it to the user (mail) is outside this service.
func (u *AuthService) ResetPassword(ctx context.Context, email string) (string, error) {
	profile, err := u.profileRepo.ProfileByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	token, err := u.jwtManager.GenerateResetToken(profile.ID)
	if err != nil {
		return "", err
	}
	return token.Raw, nil
}

// UpdatePassword sets a new password for the holder of a valid reset token
// and revokes their refresh tokens.
func (u *AuthService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	token, err := u.jwtManager.Parse(resetToken)
	if err != nil {
		return err
	}
	if !u.jwtManager.TokenType(token, ResetTokenType) {
		return app_errors.ErrTokenNotFound
	}
	if len(newPassword) < 6 || len(newPassword) > 72 {
		return app_errors.ErrIncorrectPassword
	}
	userIDStr, err := token.Claims.GetSubject()
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return err
	}
	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := u.profileRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}
	return u.tokenRepo.DeleteUserTokens(ctx, userID)
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
