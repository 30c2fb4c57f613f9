package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/poojakit/poojakit-backend/internal/auth"
	"github.com/poojakit/poojakit-backend/internal/bootstrap"
	"github.com/poojakit/poojakit-backend/internal/catalog"
	"github.com/poojakit/poojakit-backend/internal/orders"
	"github.com/poojakit/poojakit-backend/internal/users"
	"github.com/poojakit/poojakit-backend/pkg/config"
	"github.com/poojakit/poojakit-backend/pkg/logger"
)

var trackingIDRe = regexp.MustCompile(`^ORD-[A-Z0-9]{8}$`)

type testApp struct {
	router chi.Router
	conn   *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, ddl := range []string{
		`CREATE TABLE users (
			id text PRIMARY KEY, name text NOT NULL, email text NOT NULL,
			phone text, password_hash text NOT NULL,
			is_admin boolean NOT NULL DEFAULT false,
			created_at datetime, updated_at datetime
		)`,
		`CREATE UNIQUE INDEX idx_users_email ON users (email)`,
		`CREATE TABLE products (
			id text PRIMARY KEY, title text NOT NULL,
			price integer NOT NULL, description text
		)`,
		`CREATE TABLE orders (
			id text PRIMARY KEY, user_id text,
			name text NOT NULL, phone text NOT NULL, address text NOT NULL,
			city text, pin text, items text NOT NULL, total integer NOT NULL,
			status text NOT NULL DEFAULT 'pending', eta datetime, created_at datetime
		)`,
	} {
		require.NoError(t, conn.Exec(ddl).Error)
	}

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "poojakit", ExpirationDays: 7},
		Password: config.PasswordConfig{
			ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1,
			ArgonSaltLen: 16, ArgonKeyLen: 32,
		},
		Bootstrap: config.BootstrapConfig{
			AdminEmail:    "admin@poojakit.local",
			AdminPassword: "rotated-password",
			SeedProducts:  true,
		},
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	userRepo := users.NewRepository(conn)
	catalogRepo := catalog.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)

	seeder, err := bootstrap.NewSeeder(userRepo, catalogRepo, cfg.Bootstrap, cfg.Password, logg)
	require.NoError(t, err)
	require.NoError(t, seeder.Run(context.Background()))

	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:    userRepo,
		JWTConfig:   cfg.JWT,
		PasswordCfg: cfg.Password,
	})
	require.NoError(t, err)

	catalogSvc, err := catalog.NewService(catalogRepo)
	require.NoError(t, err)

	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:    orderRepo,
		Catalog: catalogSvc,
		Logger:  logg,
	})
	require.NoError(t, err)

	router, err := NewRouter(RouterParams{
		Cfg:            cfg,
		Logger:         logg,
		AuthService:    authSvc,
		CatalogService: catalogSvc,
		OrderService:   orderSvc,
	})
	require.NoError(t, err)

	return &testApp{router: router, conn: conn}
}

func (a *testApp) do(t *testing.T, method, path string, body any, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if mutate != nil {
		mutate(r)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, r)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), "body: %s", rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	decodeBody(t, rec, &body)
	code, _ := body["error"].(string)
	return code
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "token" {
			return cookie
		}
	}
	return nil
}

// signup registers an account and returns its session cookie.
func (a *testApp) signup(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/signup", map[string]any{
		"name":     "Asha",
		"email":    email,
		"password": "secret-pw",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	return cookie
}

// adminCookie logs in as the bootstrap admin.
func (a *testApp) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/login", map[string]any{
		"email":    "admin@poojakit.local",
		"password": "rotated-password",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	return cookie
}

func orderPayload() map[string]any {
	return map[string]any{
		"name":    "Asha",
		"phone":   "9876543210",
		"address": "12 Temple Street",
		"city":    "Pune",
		"pin":     "411001",
		"items": []map[string]any{
			{"id": "KIT-PRM-01", "title": "Basic Pooja Kit (Small)", "price": 249, "qty": 2},
		},
		"total": 498,
	}
}

func (a *testApp) placeOrder(t *testing.T, mutate func(*http.Request)) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/order", orderPayload(), mutate)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var placed struct {
		OK bool   `json:"ok"`
		ID string `json:"id"`
	}
	decodeBody(t, rec, &placed)
	require.True(t, placed.OK)
	require.Regexp(t, trackingIDRe, placed.ID)
	return placed.ID
}

func TestListProducts(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/products", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []map[string]any
	decodeBody(t, rec, &products)
	require.Len(t, products, 3)
	assert.Equal(t, "KIT-DEL-03", products[0]["id"])
	assert.EqualValues(t, 999, products[0]["price"])
}

func TestSignupSetsSessionCookie(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/signup", map[string]any{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "secret-pw",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		User struct {
			Email   string `json:"email"`
			IsAdmin bool   `json:"is_admin"`
		} `json:"user"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "asha@example.com", body.User.Email)
	assert.False(t, body.User.IsAdmin)
	assert.NotContains(t, rec.Body.String(), "password")

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
	assert.NotEmpty(t, cookie.Value)
}

func TestSignupDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "asha@example.com")

	rec := app.do(t, http.MethodPost, "/api/signup", map[string]any{
		"name":     "Asha Again",
		"email":    "asha@example.com",
		"password": "another-pw",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email_exists", errorCode(t, rec))
}

func TestSignupValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/signup", map[string]any{
		"name":  "Asha",
		"email": "asha@example.com",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_fields", errorCode(t, rec))
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "asha@example.com")

	rec := app.do(t, http.MethodPost, "/api/login", map[string]any{
		"email":    "asha@example.com",
		"password": "secret-pw",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, sessionCookie(t, rec))

	rec = app.do(t, http.MethodPost, "/api/login", map[string]any{
		"email":    "asha@example.com",
		"password": "wrong-pw",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_credentials", errorCode(t, rec))

	rec = app.do(t, http.MethodPost, "/api/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "secret-pw",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_credentials", errorCode(t, rec))
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/logout", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]bool
	decodeBody(t, rec, &body)
	assert.True(t, body["ok"])

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestGuestOrderAndTracking(t *testing.T) {
	app := newTestApp(t)

	id := app.placeOrder(t, nil)

	rec := app.do(t, http.MethodGet, "/api/track/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var order map[string]any
	decodeBody(t, rec, &order)
	assert.Equal(t, id, order["id"])
	assert.Equal(t, "pending", order["status"])
	assert.EqualValues(t, 498, order["total"])
	assert.Nil(t, order["user_id"])

	// tracking is case-insensitive and idempotent
	rec = app.do(t, http.MethodGet, "/api/track/"+strings.ToLower(id), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodGet, "/api/track/"+strings.ToLower(id), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTrackUnknownOrder(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/track/ORD-NOPE0000", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestOrderWithSessionAttachesUser(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signup(t, "asha@example.com")

	id := app.placeOrder(t, func(r *http.Request) { r.AddCookie(cookie) })

	rec := app.do(t, http.MethodGet, "/api/track/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var order map[string]any
	decodeBody(t, rec, &order)
	assert.NotEmpty(t, order["user_id"])
}

func TestOrderWithInvalidTokenFallsBackToGuest(t *testing.T) {
	app := newTestApp(t)

	id := app.placeOrder(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "token", Value: "expired.or.garbage"})
	})

	rec := app.do(t, http.MethodGet, "/api/track/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var order map[string]any
	decodeBody(t, rec, &order)
	assert.Nil(t, order["user_id"])
}

func TestOrderRejectsTamperedCart(t *testing.T) {
	app := newTestApp(t)

	// catalog item with a discounted price
	payload := orderPayload()
	payload["items"] = []map[string]any{
		{"id": "KIT-DEL-03", "title": "Deluxe Pooja Kit (Large)", "price": 1, "qty": 1},
	}
	payload["total"] = 1

	rec := app.do(t, http.MethodPost, "/api/order", payload, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_fields", errorCode(t, rec))

	// correct prices but a wrong claimed total
	payload = orderPayload()
	payload["total"] = 1
	rec = app.do(t, http.MethodPost, "/api/order", payload, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderValidation(t *testing.T) {
	app := newTestApp(t)

	payload := orderPayload()
	delete(payload, "phone")

	rec := app.do(t, http.MethodPost, "/api/order", payload, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_fields", errorCode(t, rec))

	var body map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, false, body["ok"])

	payload = orderPayload()
	payload["items"] = []map[string]any{}
	rec = app.do(t, http.MethodPost, "/api/order", payload, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminEndpointsRequireAdminSession(t *testing.T) {
	app := newTestApp(t)

	// no session
	rec := app.do(t, http.MethodGet, "/api/admin/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "auth_required", errorCode(t, rec))

	// regular account
	cookie := app.signup(t, "asha@example.com")
	rec = app.do(t, http.MethodGet, "/api/admin/orders", nil, func(r *http.Request) { r.AddCookie(cookie) })
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin_only", errorCode(t, rec))
}

func TestAdminListAndStatusUpdate(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminCookie(t)

	id := app.placeOrder(t, nil)

	rec := app.do(t, http.MethodGet, "/api/admin/orders", nil, func(r *http.Request) { r.AddCookie(admin) })
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	decodeBody(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])

	// pending straight to shipped is a legal skip
	rec = app.do(t, http.MethodPut, "/api/admin/order/"+id+"/status",
		map[string]any{"status": "shipped"},
		func(r *http.Request) { r.AddCookie(admin) })
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	trackRec := app.do(t, http.MethodGet, "/api/track/"+id, nil, nil)
	var order map[string]any
	decodeBody(t, trackRec, &order)
	assert.Equal(t, "shipped", order["status"])

	// backwards transition rejected
	rec = app.do(t, http.MethodPut, "/api/admin/order/"+id+"/status",
		map[string]any{"status": "pending"},
		func(r *http.Request) { r.AddCookie(admin) })
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminStatusUpdateWithBearerHeader(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminCookie(t)
	id := app.placeOrder(t, nil)

	rec := app.do(t, http.MethodPut, "/api/admin/order/"+id+"/status",
		map[string]any{"status": "confirmed"},
		func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+admin.Value) })
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAdminExport(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminCookie(t)
	app.placeOrder(t, nil)

	rec := app.do(t, http.MethodGet, "/api/admin/export", nil, func(r *http.Request) { r.AddCookie(admin) })
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="orders.json"`, rec.Header().Get("Content-Disposition"))

	var list []map[string]any
	decodeBody(t, rec, &list)
	assert.Len(t, list, 1)
}

func TestHealthLive(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
