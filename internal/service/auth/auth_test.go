package auth

import (
	"context"
	"testing"
	"time"

	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"Galeguia/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeProfileRepo struct {
	byEmail map[string]*models.Profile
	byID    map[uuid.UUID]*models.Profile
}

func (f *fakeProfileRepo) CreateProfile(_ context.Context, profile models.Profile) (*models.Profile, error) {
	if _, exists := f.byEmail[profile.Email]; exists {
		return nil, app_errors.ErrUserExists
	}
	profile.ID = uuid.New()
	f.byEmail[profile.Email] = &profile
	f.byID[profile.ID] = &profile
	return &profile, nil
}

func (f *fakeProfileRepo) ProfileByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, ok := f.byID[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) ProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	profile, ok := f.byEmail[email]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) UpdateProfile(_ context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Profile, error) {
	profile, ok := f.byID[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	if upd.Username != nil {
		profile.Username = *upd.Username
	}
	if upd.FullName != nil {
		profile.FullName = *upd.FullName
	}
	return profile, nil
}

func (f *fakeProfileRepo) UpdatePassword(_ context.Context, id uuid.UUID, hashedPassword string) error {
	profile, ok := f.byID[id]
	if !ok {
		return app_errors.ErrUserNotFound
	}
	profile.Password = hashedPassword
	return nil
}

type fakeTokenRepo struct {
	tokens map[uuid.UUID]string
}

func (f *fakeTokenRepo) Create(_ context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	f.tokens[userID] = token.Raw
	return &models.RefreshToken{UserID: userID}, nil
}

func (f *fakeTokenRepo) ByPrimaryKey(_ context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	stored, ok := f.tokens[userID]
	if !ok || stored != token.Raw {
		return nil, app_errors.ErrTokenNotFound
	}
	return &models.RefreshToken{UserID: userID}, nil
}

func (f *fakeTokenRepo) DeleteUserTokens(_ context.Context, userID uuid.UUID) error {
	delete(f.tokens, userID)
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeProfileRepo, *fakeTokenRepo) {
	t.Helper()
	profiles := &fakeProfileRepo{
		byEmail: map[string]*models.Profile{},
		byID:    map[uuid.UUID]*models.Profile{},
	}
	tokens := &fakeTokenRepo{tokens: map[uuid.UUID]string{}}
	manager := NewJWTManager("test-secret", "//", time.Minute, time.Hour, 30*time.Minute)
	return NewAuthService(logger.New("local"), manager, profiles, tokens), profiles, tokens
}

func TestSignUp_HashesPassword(t *testing.T) {
	svc, profiles, _ := newAuthFixture(t)

	profile, err := svc.SignUp(context.Background(), "maria@example.com", "segredo1", "maria")
	require.NoError(t, err)
	require.NotEqual(t, "segredo1", profile.Password)
	require.NotEmpty(t, profiles.byEmail["maria@example.com"])
}

func TestSignUp_PasswordLengthBounds(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.SignUp(context.Background(), "a@example.com", "short", "a")
	require.ErrorIs(t, err, app_errors.ErrIncorrectPassword)

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'x'
	}
	_, err = svc.SignUp(context.Background(), "b@example.com", string(long), "b")
	require.ErrorIs(t, err, app_errors.ErrIncorrectPassword)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.SignUp(context.Background(), "maria@example.com", "segredo1", "maria")
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), "maria@example.com", "segredo1", "maria2")
	require.ErrorIs(t, err, app_errors.ErrUserExists)
}

func TestSignIn_IssuesTokenPair(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)

	profile, err := svc.SignUp(context.Background(), "maria@example.com", "segredo1", "maria")
	require.NoError(t, err)

	access, refresh, err := svc.SignIn(context.Background(), "maria@example.com", "segredo1")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	require.NotEmpty(t, tokens.tokens[profile.ID])

	userID, err := svc.AccessClaims(context.Background(), access)
	require.NoError(t, err)
	require.Equal(t, profile.ID, userID)
}

func TestSignIn_WrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.SignUp(context.Background(), "maria@example.com", "segredo1", "maria")
	require.NoError(t, err)

	_, _, err = svc.SignIn(context.Background(), "maria@example.com", "errada99")
	require.ErrorIs(t, err, app_errors.ErrIncorrectPassword)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, _, err := svc.SignIn(context.Background(), "ghost@example.com", "whatever1")
	require.ErrorIs(t, err, app_errors.ErrUserNotFound)
}

func TestSignOut_RevokesRefreshTokens(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)

	profile, err := svc.SignUp(context.Background(), "maria@example.com", "segredo1", "maria")
	require.NoError(t, err)
	_, _, err = svc.SignIn(context.Background(), "maria@example.com", "segredo1")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(context.Background(), profile.ID))
	require.Empty(t, tokens.tokens)
}

func TestUpdatePassword_WithResetToken(t *testing.T) {
	svc, profiles, tokens := newAuthFixture(t)

	_, err := svc.SignUp(context.Background(), "maria@example.com", "segredo1", "maria")
	require.NoError(t, err)
	_, _, err = svc.SignIn(context.Background(), "maria@example.com", "segredo1")
	require.NoError(t, err)

	resetToken, err := svc.ResetPassword(context.Background(), "maria@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePassword(context.Background(), resetToken, "novaSenha2"))

	// The old refresh token is revoked and the new password works.
	require.Empty(t, tokens.tokens)
	_, _, err = svc.SignIn(context.Background(), "maria@example.com", "novaSenha2")
	require.NoError(t, err)
	require.NotEqual(t, "segredo1", profiles.byEmail["maria@example.com"].Password)
}

func TestUpdatePassword_RejectsAccessToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.SignUp(context.Background(), "maria@example.com", "segredo1", "maria")
	require.NoError(t, err)
	access, _, err := svc.SignIn(context.Background(), "maria@example.com", "segredo1")
	require.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), access, "novaSenha2")
	require.Error(t, err)
}
