package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/resume-analyzer/apiserver/internal/auth"
	"github.com/resume-analyzer/apiserver/internal/services"
	"github.com/resume-analyzer/apiserver/internal/store"
	"github.com/resume-analyzer/apiserver/types"
)

// fakeUserRepo is an in-memory services.UserRepository.
type fakeUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]types.User), nextID: 1}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id int, role string) error {
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Role = role
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	return len(f.users), nil
}

type authFixture struct {
	repo        *fakeUserRepo
	userService *services.UserService
	tokens      *auth.TokenService
	middleware  func(http.Handler) http.Handler
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := newFakeUserRepo()
	passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)
	userService := services.NewUserService(repo, passwords, "admin@example.com", "adminpw")
	tokens := auth.NewTokenService("handler-test-secret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &authFixture{
		repo:        repo,
		userService: userService,
		tokens:      tokens,
		middleware:  RequireAuth(tokens, userService, logger),
	}
}

func (fx *authFixture) addUser(t *testing.T, email, role string) (types.User, string) {
	t.Helper()
	user, err := fx.repo.Create(context.Background(), types.User{
		Email: email,
		Name:  "Test User",
		Role:  role,
	})
	require.NoError(t, err)

	token, err := fx.tokens.Issue(user.ID, user.Email, user.Role)
	require.NoError(t, err)
	return user, token
}

func protectedRouter(fx *authFixture) *chi.Mux {
	router := chi.NewRouter()
	router.With(fx.middleware).Get("/me", func(w http.ResponseWriter, r *http.Request) {
		user, err := identityFromContext(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, publicUser(user))
	})
	router.With(fx.middleware, RequireRole(types.RoleAdmin)).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	return router
}

func TestRequireAuthMissingToken(t *testing.T) {
	fx := newAuthFixture(t)
	router := protectedRouter(fx)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthBadHeader(t *testing.T) {
	fx := newAuthFixture(t)
	router := protectedRouter(fx)

	for _, header := range []string{"Bearer", "Basic abc", "Bearer  "} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	fx := newAuthFixture(t)
	user, token := fx.addUser(t, "alice@example.com", types.RoleUser)
	router := protectedRouter(fx)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	fx := newAuthFixture(t)
	user, _ := fx.addUser(t, "alice@example.com", types.RoleUser)
	router := protectedRouter(fx)

	expired := auth.NewTokenServiceWithTTL("handler-test-secret", -time.Minute)
	token, err := expired.Issue(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthDeletedUser(t *testing.T) {
	fx := newAuthFixture(t)
	user, token := fx.addUser(t, "gone@example.com", types.RoleUser)
	router := protectedRouter(fx)

	// The token is still cryptographically valid, but its subject no
	// longer exists.
	delete(fx.repo.users, user.ID)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleForbidsRegularUser(t *testing.T) {
	fx := newAuthFixture(t)
	_, token := fx.addUser(t, "user@example.com", types.RoleUser)
	router := protectedRouter(fx)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	fx := newAuthFixture(t)
	_, token := fx.addUser(t, "admin@example.com", types.RoleAdmin)
	router := protectedRouter(fx)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupAndLoginFlow(t *testing.T) {
	fx := newAuthFixture(t)

	router := chi.NewRouter()
	AuthRouter(router, fx.userService, fx.tokens, fx.middleware)

	signup := func(email string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(SignupRequest{Email: email, Password: "s3cret", Name: "Alice"})
		req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := signup("alice@example.com")
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate signup conflicts, case-insensitively.
	rec = signup("ALICE@example.com")
	assert.Equal(t, http.StatusConflict, rec.Code)

	body, _ := json.Marshal(LoginRequest{Email: "alice@example.com", Password: "s3cret"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var tokenResp TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tokenResp))
	assert.Equal(t, "bearer", tokenResp.TokenType)
	assert.Equal(t, types.RoleUser, tokenResp.Role)

	// The issued token works against the protected /me route.
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenResp.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Wrong password is a 401.
	body, _ = json.Marshal(LoginRequest{Email: "alice@example.com", Password: "wrong"})
	req = httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLoginBootstrap(t *testing.T) {
	fx := newAuthFixture(t)

	router := chi.NewRouter()
	AuthRouter(router, fx.userService, fx.tokens, fx.middleware)

	body, _ := json.Marshal(LoginRequest{Email: "admin@example.com", Password: "adminpw"})
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var tokenResp TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tokenResp))
	assert.Equal(t, types.RoleAdmin, tokenResp.Role)
}
