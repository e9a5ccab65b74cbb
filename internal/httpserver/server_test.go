package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/backend/internal/config"
	authdomain "storefront/backend/internal/domain/auth"
	productdomain "storefront/backend/internal/domain/product"
	"storefront/backend/internal/infrastructure/password"
	"storefront/backend/internal/infrastructure/token"
	authusecase "storefront/backend/internal/usecase/auth"
	productusecase "storefront/backend/internal/usecase/product"
	userusecase "storefront/backend/internal/usecase/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- in-memory repositories ---

type memUserRepo struct {
	byEmail map[string]*authdomain.User
	nextID  int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]*authdomain.User{}, nextID: 1}
}

func (r *memUserRepo) Create(ctx context.Context, user *authdomain.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return authdomain.ErrEmailExists
	}
	user.ID = r.nextID
	r.nextID++
	r.byEmail[user.Email] = user
	return nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*authdomain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, authdomain.ErrUserNotFound
	}
	copy := *user
	return &copy, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*authdomain.User, error) {
	for _, user := range r.byEmail {
		if user.ID == id {
			copy := *user
			return &copy, nil
		}
	}
	return nil, authdomain.ErrUserNotFound
}

func (r *memUserRepo) List(ctx context.Context, page authdomain.Page) ([]*authdomain.User, error) {
	var out []*authdomain.User
	for _, user := range r.byEmail {
		copy := *user
		out = append(out, &copy)
	}
	return out, nil
}

func (r *memUserRepo) SetActive(ctx context.Context, id int64, active bool, updatedAt time.Time) error {
	for _, user := range r.byEmail {
		if user.ID == id {
			user.IsActive = active
			return nil
		}
	}
	return authdomain.ErrUserNotFound
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error {
	for _, user := range r.byEmail {
		if user.ID == id {
			user.PasswordHash = passwordHash
			return nil
		}
	}
	return authdomain.ErrUserNotFound
}

type memProductRepo struct {
	byID   map[int64]*productdomain.Product
	nextID int64
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{byID: map[int64]*productdomain.Product{}, nextID: 1}
}

func (r *memProductRepo) Create(ctx context.Context, p *productdomain.Product) error {
	p.ID = r.nextID
	r.nextID++
	copy := *p
	r.byID[p.ID] = &copy
	return nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id int64) (*productdomain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, productdomain.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (r *memProductRepo) List(ctx context.Context, filter productdomain.Filter) ([]*productdomain.Product, error) {
	var out []*productdomain.Product
	for _, p := range r.byID {
		if !filter.IncludeInactive && !p.IsActive {
			continue
		}
		copy := *p
		out = append(out, &copy)
	}
	return out, nil
}

func (r *memProductRepo) Update(ctx context.Context, p *productdomain.Product) error {
	if _, ok := r.byID[p.ID]; !ok {
		return productdomain.ErrNotFound
	}
	copy := *p
	r.byID[p.ID] = &copy
	return nil
}

func (r *memProductRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return productdomain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type discardSender struct{}

func (discardSender) SendPasswordReset(ctx context.Context, email, token string) error { return nil }

// --- fixture ---

type fixture struct {
	server   *Server
	users    *memUserRepo
	products *memProductRepo
	tokens   *token.JWTManager
	hasher   *password.BcryptHasher
}

func newFixture(t *testing.T, exposeResetToken bool) *fixture {
	t.Helper()

	cfg := config.Config{
		HTTPPort:         "0",
		AllowedOrigins:   []string{"*"},
		ExposeResetToken: exposeResetToken,
	}
	tokens := token.NewJWTManager("access-secret", "reset-secret", time.Hour, 15*time.Minute, "storefront-test")
	hasher := password.NewBcryptHasher(bcrypt.MinCost)

	users := newMemUserRepo()
	products := newMemProductRepo()

	authService := authusecase.NewService(users, tokens, hasher, discardSender{})
	productService := productusecase.NewService(products)
	userService := userusecase.NewService(users)

	return &fixture{
		server:   NewServer(cfg, authService, productService, userService, tokens),
		users:    users,
		products: products,
		tokens:   tokens,
		hasher:   hasher,
	}
}

func (f *fixture) seedUser(t *testing.T, email string, role authdomain.Role, active bool) *authdomain.User {
	t.Helper()
	hash, err := f.hasher.Hash("Passw0rd")
	require.NoError(t, err)
	user := &authdomain.User{
		Name:         "Test User",
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		IsActive:     active,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *fixture) tokenFor(t *testing.T, user *authdomain.User) string {
	t.Helper()
	tok, err := f.tokens.IssueAccess(user.Email, user.ID, user.Role)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	return rec
}

// --- role gate ---

func TestRoleGate_NoTokenIs401(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGate_WrongRoleIs403(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	buyer := f.seedUser(t, "buyer@x.com", authdomain.RoleBuyer, true)

	rec := f.do(t, http.MethodGet, "/admin/users", f.tokenFor(t, buyer), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin")
}

func TestRoleGate_AdminPasses(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	admin := f.seedUser(t, "admin@x.com", authdomain.RoleAdmin, true)

	rec := f.do(t, http.MethodGet, "/admin/users", f.tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleGate_TamperedTokenIs401(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	admin := f.seedUser(t, "admin@x.com", authdomain.RoleAdmin, true)

	tok := f.tokenFor(t, admin)
	segments := strings.Split(tok, ".")
	require.Len(t, segments, 3)
	tampered := segments[0] + "." + segments[1] + "." + "x" + segments[2][1:]
	if tampered == tok {
		tampered = segments[0] + "." + segments[1] + "." + "y" + segments[2][1:]
	}

	rec := f.do(t, http.MethodGet, "/admin/users", tampered, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProducts_CreateRequiresSellerOrAdmin(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	buyer := f.seedUser(t, "buyer@x.com", authdomain.RoleBuyer, true)
	seller := f.seedUser(t, "seller@x.com", authdomain.RoleSeller, true)

	payload := map[string]any{"name": "Widget", "price": 9.99, "stock": 3}

	rec := f.do(t, http.MethodPost, "/products", "", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/products", f.tokenFor(t, buyer), payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/products", f.tokenFor(t, seller), payload)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestProducts_PublicListing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	seller := f.seedUser(t, "seller@x.com", authdomain.RoleSeller, true)

	rec := f.do(t, http.MethodPost, "/products", f.tokenFor(t, seller), map[string]any{
		"name": "Widget", "price": 9.99, "stock": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Widget")
}

func TestProducts_UpdateOwnership(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	seller := f.seedUser(t, "seller@x.com", authdomain.RoleSeller, true)
	other := f.seedUser(t, "other@x.com", authdomain.RoleSeller, true)

	rec := f.do(t, http.MethodPost, "/products", f.tokenFor(t, seller), map[string]any{
		"name": "Widget", "price": 9.99, "stock": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := fmt.Sprintf("/products/%d", created.ID)

	rec = f.do(t, http.MethodPut, path, f.tokenFor(t, other), map[string]any{"price": 5.0})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, path, f.tokenFor(t, seller), map[string]any{"price": 5.0})
	assert.Equal(t, http.StatusOK, rec.Code)
}

// --- auth flows ---

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)

	rec := f.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Ada", "email": "ada@x.com", "password": "Passw0rd", "role": "seller",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = f.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Ada", "email": "ada@x.com", "password": "Passw0rd", "role": "seller",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "ada@x.com", "password": "Passw0rd",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "seller", login.Role)

	claims, err := f.tokens.VerifyAccess(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", claims.Email())
}

func TestLogin_UniformFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	f.seedUser(t, "ada@x.com", authdomain.RoleBuyer, true)
	f.seedUser(t, "inactive@x.com", authdomain.RoleBuyer, false)

	for name, payload := range map[string]map[string]any{
		"unknown email":  {"email": "ghost@x.com", "password": "Passw0rd"},
		"wrong password": {"email": "ada@x.com", "password": "WrongPass1"},
		"inactive":       {"email": "inactive@x.com", "password": "Passw0rd"},
	} {
		rec := f.do(t, http.MethodPost, "/auth/login", "", payload)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Contains(t, rec.Body.String(), "invalid email or password", name)
	}
}

func TestPasswordResetFlow_DevMode(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	f.seedUser(t, "ada@x.com", authdomain.RoleBuyer, true)

	rec := f.do(t, http.MethodPost, "/auth/forgot-password", "", map[string]any{"email": "ada@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	var forgot struct {
		ResetToken string `json:"reset_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forgot))
	require.NotEmpty(t, forgot.ResetToken)

	// A reset token must never work as an access token.
	recAccess := f.do(t, http.MethodGet, "/admin/users", forgot.ResetToken, nil)
	assert.Equal(t, http.StatusUnauthorized, recAccess.Code)

	rec = f.do(t, http.MethodPost, "/auth/reset-password", "", map[string]any{
		"token": forgot.ResetToken, "new_password": "NewPass12",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "ada@x.com", "password": "NewPass12",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestForgotPassword_TokenHiddenByDefault(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	f.seedUser(t, "ada@x.com", authdomain.RoleBuyer, true)

	rec := f.do(t, http.MethodPost, "/auth/forgot-password", "", map[string]any{"email": "ada@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "reset_token")

	// Unknown account answers identically.
	recUnknown := f.do(t, http.MethodPost, "/auth/forgot-password", "", map[string]any{"email": "ghost@x.com"})
	assert.Equal(t, rec.Body.String(), recUnknown.Body.String())
}

// --- admin user management ---

func TestAdmin_DeactivateAndActivate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	admin := f.seedUser(t, "admin@x.com", authdomain.RoleAdmin, true)
	seller := f.seedUser(t, "seller@x.com", authdomain.RoleSeller, true)
	adminTok := f.tokenFor(t, admin)

	rec := f.do(t, http.MethodPut, fmt.Sprintf("/admin/users/%d/deactivate", seller.ID), adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Deactivated accounts can no longer log in.
	rec = f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "seller@x.com", "password": "Passw0rd",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPut, fmt.Sprintf("/admin/users/%d/activate", seller.ID), adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "seller@x.com", "password": "Passw0rd",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_CannotDeactivateSelf(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	admin := f.seedUser(t, "admin@x.com", authdomain.RoleAdmin, true)

	rec := f.do(t, http.MethodPut, fmt.Sprintf("/admin/users/%d/deactivate", admin.ID), f.tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- plumbing ---

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var snapshot map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Contains(t, snapshot, "requests_total")
}

func TestRequestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := &requestMetrics{}
	m.record(200)
	m.record(201)
	m.record(404)
	m.record(500)

	assert.Equal(t, int64(4), m.total.Load())
	assert.Equal(t, int64(2), m.success.Load())
	assert.Equal(t, int64(1), m.clientError.Load())
	assert.Equal(t, int64(1), m.serverError.Load())
}
