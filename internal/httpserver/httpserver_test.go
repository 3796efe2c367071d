package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/shopcart/internal/events"
	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/notify"
	"github.com/Skotchmaster/shopcart/internal/repo"
	"github.com/Skotchmaster/shopcart/internal/service"
	"github.com/Skotchmaster/shopcart/pkg/hash"
	"github.com/Skotchmaster/shopcart/pkg/tokens"
)

var jwtSecret = []byte("test-jwt-secret")

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Repo   *repo.GormRepo
	Events *events.Recorder

	A  *AuthHTTP
	U  *AccountHTTP
	Ad *AddressHTTP
	P  *CatalogHTTP
	C  *CartHTTP
}

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repo.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := InitTestDB(t)
	r := &repo.GormRepo{DB: db}
	rec := &events.Recorder{}

	env := &testEnv{
		T:      t,
		E:      echo.New(),
		DB:     db,
		Repo:   r,
		Events: rec,
	}
	env.A = &AuthHTTP{Svc: &service.AuthService{
		Repo:          r,
		Events:        rec,
		AccessSecret:  jwtSecret,
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}}
	env.U = &AccountHTTP{Svc: &service.AccountService{Repo: r, Events: rec}}
	env.Ad = &AddressHTTP{Svc: &service.AddressService{Repo: r}}
	env.P = &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: rec}}
	env.C = &CartHTTP{Svc: &service.CartService{Repo: r, Events: rec, Notifier: notify.Nop{}}}

	Register(env.E, &Deps{
		AuthHandler:    env.A,
		AccountHandler: env.U,
		AddressHandler: env.Ad,
		CatalogHandler: env.P,
		CartHandler:    env.C,
		JWTSecret:      jwtSecret,
		DB:             db,
	})
	return env
}

func encode(t *testing.T, body any) *bytes.Reader {
	t.Helper()
	if body == nil {
		return bytes.NewReader(nil)
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

// doJSONRequest builds a context for calling a handler directly.
func (env *testEnv) doJSONRequest(method, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *http.Request, echo.Context) {
	req := httptest.NewRequest(method, path, encode(env.T, body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return rec, req, env.E.NewContext(req, rec)
}

// serve sends the request through the full router, middleware included.
func (env *testEnv) serve(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, encode(env.T, body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func asUser(c echo.Context, id uint, admin bool) {
	role := tokens.RoleUser
	if admin {
		role = tokens.RoleAdmin
	}
	c.Set("user_id", strconv.FormatUint(uint64(id), 10))
	c.Set("role", role)
}

func (env *testEnv) user(username string, admin bool) *models.User {
	env.T.Helper()
	pw, err := hash.HashPassword("password")
	require.NoError(env.T, err)
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: pw, IsAdmin: admin}
	require.NoError(env.T, env.Repo.CreateUser(context.Background(), u))
	return u
}

func (env *testEnv) product(name, price string, stock int) *models.Product {
	env.T.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(env.T, env.Repo.CreateProduct(context.Background(), p))
	return p
}

// login returns the auth cookies issued for username.
func (env *testEnv) login(username string) []*http.Cookie {
	env.T.Helper()
	rec := env.serve(http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": "password",
	})
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(env.T, cookies, 2)
	return cookies
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "want *echo.HTTPError, got %T: %v", err, err)
	require.Equal(t, code, he.Code, "message: %v", he.Message)
	return he
}
