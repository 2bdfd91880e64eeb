package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mnhs-dev/student-record-api/internal/models"
	appErrors "github.com/mnhs-dev/student-record-api/pkg/errors"
)

type fakeAuthRepo struct {
	users  map[string]*models.User
	tokens map[string]*models.RefreshToken
}

func newFakeAuthRepo(users ...*models.User) *fakeAuthRepo {
	repo := &fakeAuthRepo{
		users:  make(map[string]*models.User),
		tokens: make(map[string]*models.RefreshToken),
	}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeAuthRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
}

func (f *fakeAuthRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return u, nil
}

func (f *fakeAuthRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := f.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (f *fakeAuthRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeAuthRepo) StoreRefreshToken(_ context.Context, token *models.RefreshToken) error {
	copied := *token
	f.tokens[token.TokenHash] = &copied
	return nil
}

func (f *fakeAuthRepo) GetRefreshToken(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	t, ok := f.tokens[tokenHash]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token not found")
	}
	copied := *t
	return &copied, nil
}

func (f *fakeAuthRepo) RevokeRefreshToken(_ context.Context, id string) error {
	for _, t := range f.tokens {
		if t.ID == id {
			now := time.Now().UTC()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeAuthRepo) RevokeUserTokens(_ context.Context, userID string) error {
	for _, t := range f.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now().UTC()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeAuthRepo) activeTokenCount(userID string) int {
	count := 0
	for _, t := range f.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			count++
		}
	}
	return count
}

func authFixture(t *testing.T) (*fakeAuthRepo, *AuthService, *models.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           "user-1",
		Email:        "adviser@school.edu.ph",
		PasswordHash: string(hash),
		FullName:     "Maria Santos",
		Role:         models.RoleAdviser,
		Active:       true,
	}
	repo := newFakeAuthRepo(user)
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-signing-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "student-record-api",
	})
	return repo, svc, user
}

func TestLoginIssuesValidTokenPair(t *testing.T) {
	repo, svc, user := authFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, models.RoleAdviser, resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)

	stored, err := repo.GetRefreshToken(context.Background(), hashRefreshToken(resp.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Nil(t, stored.RevokedAt)
	assert.NotNil(t, user.LastLogin)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	_, svc, user := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginRejectsUnknownEmailWithSameError(t *testing.T) {
	_, svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@school.edu.ph",
		Password: "secret123",
	})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	_, svc, user := authFixture(t)
	user.Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "secret123",
	})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestRefreshTokenRotatesAndRevokesOldToken(t *testing.T) {
	repo, svc, user := authFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "secret123",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	old, err := repo.GetRefreshToken(context.Background(), hashRefreshToken(login.RefreshToken))
	require.NoError(t, err)
	assert.NotNil(t, old.RevokedAt)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestLogoutRevokesOwnTokenOnly(t *testing.T) {
	repo, svc, user := authFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "secret123",
	})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), "someone-else", login.RefreshToken)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	require.NoError(t, svc.Logout(context.Background(), user.ID, login.RefreshToken))
	assert.Zero(t, repo.activeTokenCount(user.ID))
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	repo, svc, user := authFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "secret123",
	})
	require.NoError(t, err)
	require.Equal(t, 1, repo.activeTokenCount(user.ID))

	err = svc.ChangePassword(context.Background(), user.ID, models.ChangePasswordRequest{
		OldPassword: "not-the-password",
		NewPassword: "brand-new-pass",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, models.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "brand-new-pass",
	}))
	assert.Zero(t, repo.activeTokenCount(user.ID))

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    user.Email,
		Password: "brand-new-pass",
	})
	require.NoError(t, err)
}
